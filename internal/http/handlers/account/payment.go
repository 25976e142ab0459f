package account

import (
	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type createPaymentRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateVNPayPayment 为待支付订单签发支付跳转链接
func (h *Handler) CreateVNPayPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payURL, err := h.PaymentService.CreatePaymentURL(req.OrderID, userID, c.ClientIP())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "payment url created", gin.H{"pay_url": payURL})
}

// ListOrderPayments 买家查看订单支付流水
func (h *Handler) ListOrderPayments(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txns, err := h.PaymentService.ListTransactionsByOrder(orderID, userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, txns)
}
