package repository

import (
	"fmt"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"

	"gorm.io/gorm"
)

// StatsRepository 卖家经营统计聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type StatsRepository interface {
	GetStatusStats(sellerID uint) ([]OrderStatusStatsRow, error)
	GetRevenueTrends(sellerID uint, period string, startAt, endAt time.Time) ([]RevenueTrendRow, error)
	GetRevenueSummary(sellerID uint, startAt, endAt time.Time) (RevenueSummaryRow, error)
	GetTopProducts(sellerID uint, startAt, endAt time.Time, limit int) ([]ProductRankingRow, error)
}

// OrderStatusStatsRow 按状态统计的原始行
type OrderStatusStatsRow struct {
	Status string
	Orders int64
	Amount float64
}

// RevenueTrendRow 营收趋势原始行
type RevenueTrendRow struct {
	Bucket  string
	Orders  int64
	Revenue float64
}

// RevenueSummaryRow 营收汇总原始行
type RevenueSummaryRow struct {
	Orders    int64
	ItemsSold int64
	Revenue   float64
}

// ProductRankingRow 商品营收排行原始行
type ProductRankingRow struct {
	ProductID   uint
	ProductName string
	Quantity    int64
	Revenue     float64
}

// GormStatsRepository GORM 聚合实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// revenueOrderStatuses 计入营收的订单状态
func revenueOrderStatuses() []string {
	return []string{
		constants.OrderStatusPaid,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	}
}

// sellerItemBase 卖家订单项基础查询（join 订单行）
func (r *GormStatsRepository) sellerItemBase(sellerID uint) *gorm.DB {
	return r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_id = ?", sellerID)
}

// GetStatusStats 按订单状态统计卖家的订单数与金额
func (r *GormStatsRepository) GetStatusStats(sellerID uint) ([]OrderStatusStatsRow, error) {
	var rows []OrderStatusStatsRow
	if err := r.sellerItemBase(sellerID).
		Select("orders.status as status, COUNT(DISTINCT order_items.order_id) as orders, COALESCE(SUM(order_items.subtotal), 0) as amount").
		Group("orders.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRevenueTrends 按日/月/年统计卖家营收（只计入营收态订单）
func (r *GormStatsRepository) GetRevenueTrends(sellerID uint, period string, startAt, endAt time.Time) ([]RevenueTrendRow, error) {
	bucketExpr := dateBucketExpr(r.db, "orders.created_at", period)

	var rows []RevenueTrendRow
	if err := r.sellerItemBase(sellerID).
		Select(fmt.Sprintf("%s as bucket, COUNT(DISTINCT order_items.order_id) as orders, COALESCE(SUM(order_items.subtotal), 0) as revenue", bucketExpr)).
		Where("orders.status IN ?", revenueOrderStatuses()).
		Where("orders.created_at >= ? AND orders.created_at < ?", startAt, endAt).
		Group(bucketExpr).
		Order("bucket asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRevenueSummary 卖家营收汇总
func (r *GormStatsRepository) GetRevenueSummary(sellerID uint, startAt, endAt time.Time) (RevenueSummaryRow, error) {
	var row RevenueSummaryRow
	if err := r.sellerItemBase(sellerID).
		Select("COUNT(DISTINCT order_items.order_id) as orders, COALESCE(SUM(order_items.quantity), 0) as items_sold, COALESCE(SUM(order_items.subtotal), 0) as revenue").
		Where("orders.status IN ?", revenueOrderStatuses()).
		Where("orders.created_at >= ? AND orders.created_at < ?", startAt, endAt).
		Scan(&row).Error; err != nil {
		return row, err
	}
	return row, nil
}

// GetTopProducts 卖家商品营收排行
func (r *GormStatsRepository) GetTopProducts(sellerID uint, startAt, endAt time.Time, limit int) ([]ProductRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductRankingRow
	if err := r.sellerItemBase(sellerID).
		Select("order_items.product_id as product_id, order_items.product_name as product_name, COALESCE(SUM(order_items.quantity), 0) as quantity, COALESCE(SUM(order_items.subtotal), 0) as revenue").
		Where("orders.status IN ?", revenueOrderStatuses()).
		Where("orders.created_at >= ? AND orders.created_at < ?", startAt, endAt).
		Group("order_items.product_id, order_items.product_name").
		Order("revenue desc").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
