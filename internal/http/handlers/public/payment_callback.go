package public

import (
	"net/http"

	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// VNPayIPN 网关服务端通知入口。
// 无论处理结果如何都回 HTTP 200 + 网关约定的应答码，
// 网关按应答码而不是 HTTP 状态决定是否重试。
func (h *Handler) VNPayIPN(c *gin.Context) {
	result := h.PaymentService.HandleIPN(c.Request.URL.Query())
	shared.RequestLog(c).Infow("vnpay_ipn_answered",
		"rsp_code", result.RspCode,
		"message", result.Message,
	)
	c.JSON(http.StatusOK, result)
}

// VNPayReturn 浏览器回跳入口：验签后展示支付结果，不改单。
func (h *Handler) VNPayReturn(c *gin.Context) {
	result, err := h.PaymentService.HandleReturn(c.Request.URL.Query())
	if err != nil {
		shared.RequestLog(c).Warnw("vnpay_return_verify_failed", "error", err)
		response.BadRequest(c, "invalid payment signature")
		return
	}
	if result.Success {
		response.SuccessWithMsg(c, result.Message, result)
		return
	}
	response.ErrorWithData(c, response.CodeBadRequest, result.Message, result)
}
