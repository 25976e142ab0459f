package service

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务。下单、取消、状态推进全部走这里，
// 库存扣减与回补只发生在创建 / 取消两处，且都在事务内完成。
type OrderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	shippingFee int64
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, shippingFee int64) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		shippingFee: shippingFee,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID          uint
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
}

// CreateOrder 从买家购物车创建订单。
// 库存校验、订单与订单项写入、库存扣减、清空购物车
// 在同一事务内完成：任何一步失败则全部回滚。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.ShippingAddress.FullName) == "" ||
		strings.TrimSpace(input.ShippingAddress.Phone) == "" ||
		strings.TrimSpace(input.ShippingAddress.Address) == "" {
		return nil, ErrAddressIncomplete
	}
	method, err := normalizePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.cartRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cartItems))
		for _, line := range cartItems {
			// 行锁锁定商品后校验库存，并发下单在这里串行化
			product, err := productRepo.GetForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil || product.Status != constants.ProductStatusActive {
				return ErrProductNotAvailable
			}
			if product.StockQuantity < line.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.StockQuantity,
				}
			}

			affected, err := productRepo.DecrementStock(product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.StockQuantity,
				}
			}

			lineSubtotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				SellerID:    product.SellerID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
				Subtotal:    models.NewMoneyFromDecimal(lineSubtotal),
			})
		}

		shippingFee := decimal.NewFromInt(s.shippingFee)
		order = &models.Order{
			OrderNo:         generateOrderNo(),
			UserID:          input.UserID,
			Status:          constants.OrderStatusPending,
			Subtotal:        models.NewMoneyFromDecimal(subtotal),
			ShippingFee:     models.NewMoneyFromDecimal(shippingFee),
			TotalAmount:     models.NewMoneyFromDecimal(subtotal.Add(shippingFee)),
			PaymentMethod:   method,
			ShippingAddress: input.ShippingAddress,
		}
		if err := orderRepo.Create(order, items); err != nil {
			return err
		}
		order.Items = items

		return cartRepo.ClearByUser(input.UserID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", input.UserID,
		"total_amount", order.TotalAmount.String(),
	)
	return order, nil
}

// GetOrderForBuyer 买家查看自己的订单
func (s *OrderService) GetOrderForBuyer(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForSeller 卖家查看含自己订单项的订单。
// 订单项裁剪到该卖家自己的行，他人商品不外漏。
func (s *OrderService) GetOrderForSeller(orderID, sellerID uint) (*models.Order, error) {
	order, err := s.loadSellerOrder(orderID, sellerID)
	if err != nil {
		return nil, err
	}
	applySellerView(order, sellerID)
	return order, nil
}

// ListOrdersForBuyer 买家订单列表
func (s *OrderService) ListOrdersForBuyer(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !isOrderStatusValid(filter.Status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersForSeller 卖家订单列表（订单项裁剪到该卖家）
func (s *OrderService) ListOrdersForSeller(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !isOrderStatusValid(filter.Status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	orders, total, err := s.orderRepo.ListBySeller(filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		applySellerView(&orders[i], filter.SellerID)
	}
	return orders, total, nil
}

// ConfirmOrder 卖家确认收款：pending -> paid
func (s *OrderService) ConfirmOrder(orderID, sellerID uint) (*models.Order, error) {
	order, err := s.loadSellerOrder(orderID, sellerID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return s.advance(order, constants.OrderStatusPaid, map[string]interface{}{"paid_at": now})
}

// StartProcessing 卖家开始备货：paid -> processing
func (s *OrderService) StartProcessing(orderID, sellerID uint) (*models.Order, error) {
	order, err := s.loadSellerOrder(orderID, sellerID)
	if err != nil {
		return nil, err
	}
	return s.advance(order, constants.OrderStatusProcessing, nil)
}

// StartShipping 卖家发货：paid / processing -> shipped
func (s *OrderService) StartShipping(orderID, sellerID uint) (*models.Order, error) {
	order, err := s.loadSellerOrder(orderID, sellerID)
	if err != nil {
		return nil, err
	}
	return s.advance(order, constants.OrderStatusShipped, nil)
}

// ConfirmDelivery 买家确认收货：shipped -> delivered
func (s *OrderService) ConfirmDelivery(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.advance(order, constants.OrderStatusDelivered, nil)
}

// CancelOrderByBuyer 买家取消订单：只允许 pending，库存回补
func (s *OrderService) CancelOrderByBuyer(orderID, userID uint, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, &InvalidTransitionError{From: order.Status, To: constants.OrderStatusCancelled}
	}
	return s.cancelOrder(order, constants.CancelledByBuyer, reason)
}

// CancelOrderBySeller 卖家取消订单：pending 或 paid，
// 已收款订单取消必须给出原因；库存回补。
func (s *OrderService) CancelOrderBySeller(orderID, sellerID uint, reason string) (*models.Order, error) {
	order, err := s.loadSellerOrder(orderID, sellerID)
	if err != nil {
		return nil, err
	}
	if !isTransitionAllowed(order.Status, constants.OrderStatusCancelled) {
		return nil, &InvalidTransitionError{From: order.Status, To: constants.OrderStatusCancelled}
	}
	if order.Status == constants.OrderStatusPaid && strings.TrimSpace(reason) == "" {
		return nil, ErrCancelReasonMissing
	}
	return s.cancelOrder(order, constants.CancelledBySeller, reason)
}

// cancelOrder 取消订单：回补每个订单项的库存并落取消信息，
// 全程单事务。守卫翻转在前：预读后状态被并发改掉的调用
// 翻不动状态，也就不会回补库存，并发取消只生效一次。
func (s *OrderService) cancelOrder(order *models.Order, cancelledBy, reason string) (*models.Order, error) {
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		affected, err := orderRepo.UpdateStatus(order.ID, order.Status, constants.OrderStatusCancelled, map[string]interface{}{
			"cancelled_at":  now,
			"cancelled_by":  cancelledBy,
			"cancel_reason": strings.TrimSpace(reason),
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return staleTransitionError(orderRepo, order.ID, order.Status, constants.OrderStatusCancelled)
		}

		for _, item := range order.Items {
			if _, err := productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.CancelledBy = cancelledBy
	order.CancelReason = strings.TrimSpace(reason)
	logger.Infow("order_cancelled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"cancelled_by", cancelledBy,
	)
	return order, nil
}

// advance 单步状态推进，迁移表裁决合法性。
// 写入带状态守卫：读取后被并发改掉的状态推不动，按非法迁移报错。
func (s *OrderService) advance(order *models.Order, target string, updates map[string]interface{}) (*models.Order, error) {
	if !isTransitionAllowed(order.Status, target) {
		return nil, &InvalidTransitionError{From: order.Status, To: target}
	}
	affected, err := s.orderRepo.UpdateStatus(order.ID, order.Status, target, updates)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, staleTransitionError(s.orderRepo, order.ID, order.Status, target)
	}
	previous := order.Status
	order.Status = target
	if paidAt, ok := updates["paid_at"].(time.Time); ok {
		order.PaidAt = &paidAt
	}
	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", previous,
		"to", target,
	)
	return order, nil
}

// staleTransitionError 守卫更新落空后的报错：重读当前状态，
// 按真实的 from 报非法迁移。
func staleTransitionError(repo repository.OrderRepository, orderID uint, fallbackFrom, target string) error {
	from := fallbackFrom
	if current, err := repo.GetByID(orderID); err == nil && current != nil {
		from = current.Status
	}
	return &InvalidTransitionError{From: from, To: target}
}

// loadSellerOrder 加载订单并裁决卖家操作权：
// 卖家在订单中至少要有一个订单项。
func (s *OrderService) loadSellerOrder(orderID, sellerID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	count, err := s.orderRepo.SellerItemCount(orderID, sellerID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func filterItemsBySeller(items []models.OrderItem, sellerID uint) []models.OrderItem {
	filtered := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.SellerID == sellerID {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// applySellerView 卖家视角：订单项裁剪到该卖家，
// 金额按自己的行重算，运费归整单不计入卖家份额。
func applySellerView(order *models.Order, sellerID uint) {
	order.Items = filterItemsBySeller(order.Items, sellerID)
	share := decimal.Zero
	for _, item := range order.Items {
		share = share.Add(item.Subtotal.Decimal)
	}
	order.Subtotal = models.NewMoneyFromDecimal(share)
	order.TotalAmount = models.NewMoneyFromDecimal(share)
	order.ShippingFee = models.NewMoneyFromInt(0)
}

func normalizePaymentMethod(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.PaymentMethodCOD:
		return constants.PaymentMethodCOD, nil
	case constants.PaymentMethodVNPay:
		return constants.PaymentMethodVNPay, nil
	}
	return "", ErrPaymentMethodInvalid
}

// generateOrderNo 生成订单号：时间戳 + 6 位随机数字
func generateOrderNo() string {
	return "ORD" + time.Now().Format("20060102150405") + randNumeric(6)
}

func randNumeric(length int) string {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
