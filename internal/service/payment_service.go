package service

import (
	"net/url"
	"time"

	"github.com/choviet-next/internal/config"
	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/payment/vnpay"
	"github.com/choviet-next/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService 支付服务。支付链接签发与网关回调对账都在这里，
// IPN 是唯一允许改单的入口，浏览器回跳只验签展示。
type PaymentService struct {
	db          *gorm.DB
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	paymentRepo repository.PaymentRepository
}

// NewPaymentService 创建支付服务
func NewPaymentService(db *gorm.DB, cfg *config.Config, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, paymentRepo repository.PaymentRepository) *PaymentService {
	return &PaymentService{
		db:          db,
		cfg:         cfg,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *PaymentService) gatewayConfig() *vnpay.Config {
	return &vnpay.Config{
		TmnCode:    s.cfg.VNPay.TmnCode,
		HashSecret: s.cfg.VNPay.HashSecret,
		PayURL:     s.cfg.VNPay.PayURL,
		ReturnURL:  s.cfg.VNPay.ReturnURL,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	return logger.SW().With(kv...)
}

// CreatePaymentURL 为买家自己的待支付订单签发支付跳转链接。
// 每次签发插入一条 pending 流水，回调时推进这条流水。
func (s *PaymentService) CreatePaymentURL(orderID, userID uint, clientIP string) (string, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return "", ErrOrderNotPending
	}

	payURL, err := vnpay.BuildPaymentURL(s.gatewayConfig(), vnpay.CreateInput{
		TxnRef:   order.OrderNo,
		Amount:   order.TotalAmount.Decimal,
		ClientIP: clientIP,
	})
	if err != nil {
		return "", err
	}

	txn := &models.PaymentTransaction{
		OrderID: order.ID,
		Amount:  order.TotalAmount,
		Method:  constants.PaymentMethodVNPay,
		Status:  constants.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(txn); err != nil {
		return "", err
	}
	logger.Infow("payment_url_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"transaction_id", txn.ID,
	)
	return payURL, nil
}

// IPNResult 网关 IPN 应答
type IPNResult struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// HandleIPN 处理网关服务端通知（唯一可信的支付确认入口）。
// 验签 → 找单 → 对金额 → 幂等检查 → 落状态。
// 无论支付本身成败，处理完成都应答 00，网关据此停止重试。
func (s *PaymentService) HandleIPN(query url.Values) IPNResult {
	data, err := vnpay.VerifyCallback(s.gatewayConfig(), query)
	if err != nil {
		logger.Warnw("payment_ipn_verify_failed", "error", err)
		return IPNResult{RspCode: constants.VNPayRspChecksumFailed, Message: "Invalid signature"}
	}

	log := paymentLogger(
		"txn_ref", data.TxnRef,
		"response_code", data.ResponseCode,
		"gateway_txn_no", data.TransactionNo,
		"amount", data.Amount.String(),
	)
	log.Infow("payment_ipn_received")

	order, err := s.orderRepo.GetByOrderNo(data.TxnRef)
	if err != nil {
		log.Errorw("payment_ipn_order_fetch_failed", "error", err)
		return IPNResult{RspCode: constants.VNPayRspUnknownError, Message: "Unknown error"}
	}
	if order == nil {
		log.Warnw("payment_ipn_order_not_found")
		return IPNResult{RspCode: constants.VNPayRspOrderNotFound, Message: "Order not found"}
	}
	if !data.Amount.Equal(order.TotalAmount.Decimal) {
		log.Warnw("payment_ipn_amount_mismatch", "expected", order.TotalAmount.String())
		return IPNResult{RspCode: constants.VNPayRspInvalidAmount, Message: "Invalid amount"}
	}
	if order.Status != constants.OrderStatusPending {
		// 幂等处理：重复投递 / 并发投递不再改单
		log.Infow("payment_ipn_already_processed", "order_status", order.Status)
		return IPNResult{RspCode: constants.VNPayRspAlreadyConfirmed, Message: "Order already confirmed"}
	}

	alreadyProcessed := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)

		// 守卫更新从 pending 翻转：两次近同时投递只有一次翻得动，
		// 落空的一次按已处理应答，库存回补只跟着翻转成功走
		now := time.Now()
		var affected int64
		var err error
		if data.Success() {
			affected, err = orderRepo.UpdateStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, map[string]interface{}{
				"paid_at": now,
			})
		} else {
			affected, err = orderRepo.UpdateStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, map[string]interface{}{
				"cancelled_at":  now,
				"cancelled_by":  constants.CancelledByBuyer,
				"cancel_reason": "payment failed: " + vnpay.ResponseMessage(data.ResponseCode),
			})
		}
		if err != nil {
			return err
		}
		if affected == 0 {
			alreadyProcessed = true
			return nil
		}

		// 支付失败：订单已取消，回补每个订单项的库存
		if !data.Success() {
			for _, item := range order.Items {
				if _, err := productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return s.settleTransaction(paymentRepo, order.ID, data)
	})
	if err != nil {
		log.Errorw("payment_ipn_apply_failed", "error", err)
		return IPNResult{RspCode: constants.VNPayRspUnknownError, Message: "Unknown error"}
	}
	if alreadyProcessed {
		log.Infow("payment_ipn_already_processed_in_tx")
		return IPNResult{RspCode: constants.VNPayRspAlreadyConfirmed, Message: "Order already confirmed"}
	}

	log.Infow("payment_ipn_processed", "order_id", order.ID, "success", data.Success())
	return IPNResult{RspCode: constants.VNPayRspSuccess, Message: "Confirm success"}
}

// settleTransaction 把订单最新的 pending 流水推进到终态。
// 找不到 pending 流水时补插一条（容忍跳过创建链接直接回调）。
func (s *PaymentService) settleTransaction(paymentRepo repository.PaymentRepository, orderID uint, data *vnpay.CallbackData) error {
	status := constants.PaymentStatusFailed
	if data.Success() {
		status = constants.PaymentStatusSuccess
	}

	txn, err := paymentRepo.GetLatestPendingByOrder(orderID)
	if err != nil {
		return err
	}
	if txn == nil {
		txn = &models.PaymentTransaction{
			OrderID: orderID,
			Amount:  models.NewMoneyFromDecimal(data.Amount),
			Method:  constants.PaymentMethodVNPay,
			Status:  status,
		}
		txn.TransactionNo = data.TransactionNo
		txn.BankCode = data.BankCode
		txn.ResponseCode = data.ResponseCode
		txn.PayDate = data.PayDate
		return paymentRepo.Create(txn)
	}

	txn.Status = status
	txn.TransactionNo = data.TransactionNo
	txn.BankCode = data.BankCode
	txn.ResponseCode = data.ResponseCode
	txn.PayDate = data.PayDate
	return paymentRepo.Update(txn)
}

// ReturnResult 浏览器回跳展示数据
type ReturnResult struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	OrderNo      string       `json:"order_no"`
	Amount       models.Money `json:"amount"`
	ResponseCode string       `json:"response_code"`
}

// HandleReturn 处理浏览器回跳：只验签展示结果，不改任何状态，
// 改单由 IPN 负责。
func (s *PaymentService) HandleReturn(query url.Values) (*ReturnResult, error) {
	data, err := vnpay.VerifyCallback(s.gatewayConfig(), query)
	if err != nil {
		return nil, err
	}
	return &ReturnResult{
		Success:      data.Success(),
		Message:      vnpay.ResponseMessage(data.ResponseCode),
		OrderNo:      data.TxnRef,
		Amount:       models.NewMoneyFromDecimal(data.Amount),
		ResponseCode: data.ResponseCode,
	}, nil
}

// ListTransactionsByOrder 买家查看自己订单的支付流水
func (s *PaymentService) ListTransactionsByOrder(orderID, userID uint) ([]models.PaymentTransaction, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	txns, err := s.paymentRepo.ListByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, ErrPaymentNotFound
	}
	return txns, nil
}
