package repository

import (
	"errors"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付流水数据访问接口
type PaymentRepository interface {
	Create(txn *models.PaymentTransaction) error
	Update(txn *models.PaymentTransaction) error
	GetByID(id uint) (*models.PaymentTransaction, error)
	GetLatestByOrder(orderID uint) (*models.PaymentTransaction, error)
	GetLatestPendingByOrder(orderID uint) (*models.PaymentTransaction, error)
	ListByOrderID(orderID uint) ([]models.PaymentTransaction, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付流水仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付流水
func (r *GormPaymentRepository) Create(txn *models.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

// Update 更新支付流水
func (r *GormPaymentRepository) Update(txn *models.PaymentTransaction) error {
	return r.db.Save(txn).Error
}

// GetByID 根据 ID 获取支付流水
func (r *GormPaymentRepository) GetByID(id uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetLatestByOrder 获取订单最新支付流水
func (r *GormPaymentRepository) GetLatestByOrder(orderID uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	result := r.db.Where("order_id = ?", orderID).Order("id desc").Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// GetLatestPendingByOrder 获取订单最新待支付流水
func (r *GormPaymentRepository) GetLatestPendingByOrder(orderID uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	result := r.db.Where("order_id = ? AND status = ?", orderID, constants.PaymentStatusPending).
		Order("id desc").Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// ListByOrderID 获取订单支付流水列表
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
