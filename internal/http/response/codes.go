package response

// 业务码与 HTTP 状态码取同一套值，错误响应以实际 HTTP 状态返回。
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
