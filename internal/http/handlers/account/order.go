package account

import (
	"errors"
	"strconv"

	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method"`
}

// CreateOrder 从购物车创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Created(c, "order created", gin.H{
		"order_id":     order.ID,
		"order_no":     order.OrderNo,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
}

// GetOrder 订单详情。买家看整单；
// 买家名下没有这张单时回退卖家视角（订单项裁剪到该卖家），
// 其他错误原样上抛，不吞成 not found。
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrderForBuyer(orderID, userID)
	if errors.Is(err, service.ErrOrderNotFound) {
		order, err = h.OrderService.GetOrderForSeller(orderID, userID)
	}
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListBuyerOrders 买家订单列表
func (h *Handler) ListBuyerOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	filter := orderListFilter(c)
	filter.UserID = userID

	orders, total, err := h.OrderService.ListOrdersForBuyer(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(filter.Page, filter.PageSize, total))
}

// ListSellerOrders 卖家订单列表
func (h *Handler) ListSellerOrders(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	filter := orderListFilter(c)
	filter.SellerID = sellerID

	orders, total, err := h.OrderService.ListOrdersForSeller(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(filter.Page, filter.PageSize, total))
}

// ConfirmOrder 卖家确认收款：pending -> paid
func (h *Handler) ConfirmOrder(c *gin.Context) {
	h.sellerTransition(c, h.OrderService.ConfirmOrder)
}

// StartProcessing 卖家开始备货：paid -> processing
func (h *Handler) StartProcessing(c *gin.Context) {
	h.sellerTransition(c, h.OrderService.StartProcessing)
}

// StartShipping 卖家发货：paid / processing -> shipped
func (h *Handler) StartShipping(c *gin.Context) {
	h.sellerTransition(c, h.OrderService.StartShipping)
}

// ConfirmDelivery 买家确认收货：shipped -> delivered
func (h *Handler) ConfirmDelivery(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.ConfirmDelivery(orderID, userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "order delivered", gin.H{"status": order.Status})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrderByBuyer 买家取消订单
func (h *Handler) CancelOrderByBuyer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req cancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.OrderService.CancelOrderByBuyer(orderID, userID, req.Reason)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "order cancelled", gin.H{"status": order.Status})
}

// CancelOrderBySeller 卖家取消订单
func (h *Handler) CancelOrderBySeller(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req cancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.OrderService.CancelOrderBySeller(orderID, sellerID, req.Reason)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "order cancelled", gin.H{"status": order.Status})
}

func (h *Handler) sellerTransition(c *gin.Context, op func(orderID, sellerID uint) (*models.Order, error)) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := op(orderID, sellerID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "order updated", gin.H{"status": order.Status})
}

func orderListFilter(c *gin.Context) repository.OrderListFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)
	return repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
	}
}
