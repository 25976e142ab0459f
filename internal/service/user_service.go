package service

import (
	"strings"

	"github.com/choviet-next/internal/config"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService 用户资料服务
type UserService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserService 创建用户资料服务
func NewUserService(cfg *config.Config, userRepo repository.UserRepository) *UserService {
	return &UserService{cfg: cfg, userRepo: userRepo}
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfileInput 更新资料输入。邮箱与角色不在可改范围内。
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
	Address  *string
}

// UpdateProfile 更新用户资料
func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	updates := map[string]interface{}{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name != "" {
			updates["full_name"] = name
			user.FullName = name
		}
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		updates["phone"] = phone
		user.Phone = phone
	}
	if input.Address != nil {
		address := strings.TrimSpace(*input.Address)
		updates["address"] = address
		user.Address = address
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(userID, updates); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword 修改密码（需验证当前密码）
func (s *UserService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(userID, map[string]interface{}{"password_hash": string(hashed)})
}
