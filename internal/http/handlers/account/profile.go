package account

import (
	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
)

type profilePayload struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

func newProfilePayload(user *models.User) profilePayload {
	return profilePayload{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Address:  user.Address,
		Role:     service.PublicRole(user.Role),
	}
}

// GetProfile 获取当前用户资料
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserService.GetProfile(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, newProfilePayload(user))
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// UpdateProfile 更新资料。邮箱与角色不可修改。
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.UserService.UpdateProfile(userID, service.UpdateProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "profile updated", newProfilePayload(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.UserService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password changed", nil)
}
