package service

import (
	"errors"
	"fmt"
)

// 业务错误哨兵。handler 层用 errors.Is 映射到 HTTP 状态码，
// 错误文案直接面向 API 调用方。
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
	ErrWeakPassword       = errors.New("password does not meet the policy")

	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product is not available")
	ErrProductPriceInvalid = errors.New("product price is invalid")
	ErrProductStockInvalid = errors.New("product stock is invalid")
	ErrCategoryNotFound    = errors.New("category not found")

	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrQuantityInvalid  = errors.New("quantity must be at least 1")

	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderStatusInvalid  = errors.New("order status filter is invalid")
	ErrOrderNotPending     = errors.New("order is not awaiting payment")
	ErrCancelReasonMissing = errors.New("cancellation reason is required")
	ErrAddressIncomplete   = errors.New("shipping address is incomplete")

	ErrPaymentNotFound       = errors.New("payment transaction not found")
	ErrPaymentMethodInvalid  = errors.New("payment method is not supported")
	ErrOrderAlreadyConfirmed = errors.New("order payment already confirmed")

	ErrForbidden = errors.New("operation not permitted")

	ErrFileTooLarge       = errors.New("file exceeds the size limit")
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// InsufficientStockError 库存不足错误，携带商品与可用量供前端提示
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ErrInsufficientStock 库存不足哨兵，errors.Is 匹配用
var ErrInsufficientStock = errors.New("insufficient stock")

// Is 让 InsufficientStockError 匹配 ErrInsufficientStock
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError 非法状态迁移错误
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// ErrInvalidTransition 非法状态迁移哨兵
var ErrInvalidTransition = errors.New("invalid order status transition")

// Is 让 InvalidTransitionError 匹配 ErrInvalidTransition
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
