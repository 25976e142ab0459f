package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/choviet-next/internal/config"
	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

// AuthService 认证服务
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

// UserClaims 用户 JWT 声明
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
	Role     string
}

// AuthResult 登录 / 注册结果
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register 用户注册。角色只接受 buyer/seller，
// buyer 入库时落为 customer。
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, errors.New("full name is required")
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}
	role, err := normalizeRole(input.Role)
	if err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", user.Role)

	return s.issueToken(user)
}

// Login 用户登录
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		logger.Warnw("login_timestamp_update_failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	return s.issueToken(user)
}

// ForgotPassword 生成重置密码令牌。邮箱未注册时同样返回成功，
// 避免接口被用来探测账号；令牌由上层决定如何投递。
func (s *AuthService) ForgotPassword(email string) (string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", nil
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}

	token, err := randomToken(32)
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}); err != nil {
		return "", err
	}
	logger.Infow("password_reset_token_issued", "user_id", user.ID)
	return token, nil
}

// ResetPassword 使用令牌重置密码，成功后令牌立即作废
func (s *AuthService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetTokenInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByResetToken(token)
	if err != nil {
		return err
	}
	if user == nil || user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"password_hash":      string(hashed),
		"reset_token":        "",
		"reset_token_expiry": nil,
	}); err != nil {
		return err
	}
	logger.Infow("password_reset_completed", "user_id", user.ID)
	return nil
}

// GenerateToken 为用户签发 JWT
func (s *AuthService) GenerateToken(user *models.User) (string, time.Time, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   PublicRole(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 解析并校验 JWT
func (s *AuthService) ParseToken(tokenString string) (*UserClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if parsed, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return parsed, nil
	}
	return nil, errors.New("invalid token")
}

func (s *AuthService) issueToken(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// PublicRole 数据库角色转对外角色（customer -> buyer）
func PublicRole(role string) string {
	if role == constants.RoleCustomer {
		return constants.RoleBuyer
	}
	return role
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.New("email format is invalid")
	}
	return email, nil
}

func normalizeRole(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.RoleBuyer, constants.RoleCustomer:
		return constants.RoleCustomer, nil
	case constants.RoleSeller:
		return constants.RoleSeller, nil
	}
	return "", errors.New("role must be buyer or seller")
}

func randomToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
