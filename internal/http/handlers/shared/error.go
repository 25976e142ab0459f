package shared

import (
	"errors"

	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// serviceErrorRule 业务哨兵错误到业务码的映射
type serviceErrorRule struct {
	target error
	code   int
}

// 映射表按错误类别分组。业务错误文案直接取 error 文本。
var serviceErrorRules = []serviceErrorRule{
	{target: service.ErrEmailExists, code: response.CodeBadRequest},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized},
	{target: service.ErrResetTokenInvalid, code: response.CodeBadRequest},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest},
	{target: service.ErrUserNotFound, code: response.CodeNotFound},

	{target: service.ErrProductNotFound, code: response.CodeNotFound},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest},
	{target: service.ErrProductStockInvalid, code: response.CodeBadRequest},
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound},

	{target: service.ErrCartItemNotFound, code: response.CodeNotFound},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest},

	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest},
	{target: service.ErrOrderNotPending, code: response.CodeBadRequest},
	{target: service.ErrCancelReasonMissing, code: response.CodeBadRequest},
	{target: service.ErrAddressIncomplete, code: response.CodeBadRequest},

	{target: service.ErrPaymentNotFound, code: response.CodeNotFound},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest},

	{target: service.ErrForbidden, code: response.CodeForbidden},

	{target: service.ErrFileTooLarge, code: response.CodeBadRequest},
	{target: service.ErrFileTypeNotAllowed, code: response.CodeBadRequest},
	{target: service.ErrStorageUnavailable, code: response.CodeInternal},
	{target: service.ErrStatsPeriodInvalid, code: response.CodeBadRequest},
}

// RespondServiceError 把 service 层错误映射为接口错误响应。
// 命中映射表的返回业务错误文案，未命中的一律按内部错误处理，
// 不把底层细节透给调用方。
func RespondServiceError(c *gin.Context, err error) {
	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, err.Error())
			return
		}
	}
	RespondError(c, response.CodeInternal, "internal server error", err)
}
