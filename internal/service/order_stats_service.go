package service

import (
	"errors"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ErrStatsPeriodInvalid 营收统计周期非法
var ErrStatsPeriodInvalid = errors.New("period must be day, month or year")

// OrderStatsService 卖家经营统计服务
type OrderStatsService struct {
	statsRepo repository.StatsRepository
}

// NewOrderStatsService 创建统计服务
func NewOrderStatsService(statsRepo repository.StatsRepository) *OrderStatsService {
	return &OrderStatsService{statsRepo: statsRepo}
}

// StatusStat 按状态统计行
type StatusStat struct {
	Status string       `json:"status"`
	Orders int64        `json:"orders"`
	Amount models.Money `json:"amount"`
}

// GetStatusStats 卖家订单按状态统计。所有状态都返回，
// 没有订单的状态补零行。
func (s *OrderStatsService) GetStatusStats(sellerID uint) ([]StatusStat, error) {
	rows, err := s.statsRepo.GetStatusStats(sellerID)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]repository.OrderStatusStatsRow, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	stats := make([]StatusStat, 0, len(constants.AllOrderStatuses))
	for _, status := range constants.AllOrderStatuses {
		row := byStatus[status]
		stats = append(stats, StatusStat{
			Status: status,
			Orders: row.Orders,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromFloat(row.Amount)),
		})
	}
	return stats, nil
}

// RevenueStatsInput 营收统计输入。Year/Month 为 0 时取当前时间。
type RevenueStatsInput struct {
	SellerID uint
	Period   string // day / month / year
	Year     int
	Month    int
}

// RevenueTrendPoint 营收趋势点
type RevenueTrendPoint struct {
	Bucket  string       `json:"bucket"`
	Orders  int64        `json:"orders"`
	Revenue models.Money `json:"revenue"`
}

// RevenueStats 营收统计结果
type RevenueStats struct {
	Period      string              `json:"period"`
	StartAt     time.Time           `json:"start_at"`
	EndAt       time.Time           `json:"end_at"`
	Orders      int64               `json:"orders"`
	ItemsSold   int64               `json:"items_sold"`
	Revenue     models.Money        `json:"revenue"`
	Trends      []RevenueTrendPoint `json:"trends"`
	TopProducts []TopProduct        `json:"top_products"`
}

// TopProduct 商品营收排行项
type TopProduct struct {
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int64        `json:"quantity"`
	Revenue     models.Money `json:"revenue"`
}

// GetRevenueStats 卖家营收统计。只计入营收态订单，
// 按 period 决定桶粒度与统计区间：
//   - day:   指定年月内按日
//   - month: 指定年内按月
//   - year:  近五年按年
func (s *OrderStatsService) GetRevenueStats(input RevenueStatsInput) (*RevenueStats, error) {
	startAt, endAt, err := resolveStatsRange(input.Period, input.Year, input.Month, time.Now())
	if err != nil {
		return nil, err
	}

	summary, err := s.statsRepo.GetRevenueSummary(input.SellerID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	trendRows, err := s.statsRepo.GetRevenueTrends(input.SellerID, input.Period, startAt, endAt)
	if err != nil {
		return nil, err
	}
	topRows, err := s.statsRepo.GetTopProducts(input.SellerID, startAt, endAt, 10)
	if err != nil {
		return nil, err
	}

	trends := make([]RevenueTrendPoint, 0, len(trendRows))
	for _, row := range trendRows {
		trends = append(trends, RevenueTrendPoint{
			Bucket:  row.Bucket,
			Orders:  row.Orders,
			Revenue: models.NewMoneyFromDecimal(decimal.NewFromFloat(row.Revenue)),
		})
	}
	top := make([]TopProduct, 0, len(topRows))
	for _, row := range topRows {
		top = append(top, TopProduct{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			Revenue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(row.Revenue)),
		})
	}

	return &RevenueStats{
		Period:      input.Period,
		StartAt:     startAt,
		EndAt:       endAt,
		Orders:      summary.Orders,
		ItemsSold:   summary.ItemsSold,
		Revenue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(summary.Revenue)),
		Trends:      trends,
		TopProducts: top,
	}, nil
}

// resolveStatsRange 计算统计区间 [startAt, endAt)
func resolveStatsRange(period string, year, month int, now time.Time) (time.Time, time.Time, error) {
	if year <= 0 {
		year = now.Year()
	}
	if month <= 0 || month > 12 {
		month = int(now.Month())
	}
	switch period {
	case "day":
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		return start, start.AddDate(0, 1, 0), nil
	case "month":
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		return start, start.AddDate(1, 0, 0), nil
	case "year":
		end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.Local)
		return end.AddDate(-5, 0, 0), end, nil
	}
	return time.Time{}, time.Time{}, ErrStatsPeriodInvalid
}
