package public

import (
	"time"

	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// authPayload 登录 / 注册响应体
type authPayload struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      userPayload `json:"user"`
}

type userPayload struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

func newUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Address:  user.Address,
		Role:     service.PublicRole(user.Role),
	}
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.AuthService.Register(service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Created(c, "registered", authPayload{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      newUserPayload(result.User),
	})
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	response.Success(c, authPayload{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      newUserPayload(result.User),
	})
}

// ForgotPassword 签发重置密码令牌。
// 未接邮件服务，令牌直接在响应里返回；
// 邮箱是否注册不影响响应，避免账号探测。
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, err := h.AuthService.ForgotPassword(req.Email)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	data := gin.H{}
	if token != "" {
		data["reset_token"] = token
	}
	response.SuccessWithMsg(c, "if the email is registered, a reset token has been issued", data)
}

// ResetPassword 用令牌重置密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.AuthService.ResetPassword(req.Token, req.NewPassword); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password reset", nil)
}
