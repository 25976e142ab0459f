package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStatsServiceTest(t *testing.T) (*OrderStatsService, *OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:stats_service_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	statsSvc := NewOrderStatsService(repository.NewStatsRepository(db))
	orderSvc := NewOrderService(db,
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		30000,
	)
	return statsSvc, orderSvc, db
}

func TestGetStatusStatsZeroFills(t *testing.T) {
	statsSvc, orderSvc, db := setupStatsServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	addCartLine(t, db, buyer.ID, product.ID, 1)

	if _, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	}); err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	stats, err := statsSvc.GetStatusStats(seller.ID)
	if err != nil {
		t.Fatalf("GetStatusStats error: %v", err)
	}
	if len(stats) != len(constants.AllOrderStatuses) {
		t.Fatalf("stats should cover every status, got %d rows", len(stats))
	}

	byStatus := map[string]StatusStat{}
	for _, row := range stats {
		byStatus[row.Status] = row
	}
	if byStatus[constants.OrderStatusPending].Orders != 1 {
		t.Fatalf("pending orders want 1 got %d", byStatus[constants.OrderStatusPending].Orders)
	}
	if byStatus[constants.OrderStatusDelivered].Orders != 0 {
		t.Fatalf("delivered orders want 0 got %d", byStatus[constants.OrderStatusDelivered].Orders)
	}
}

func TestGetRevenueStatsCountsOnlyRevenueStatuses(t *testing.T) {
	statsSvc, orderSvc, db := setupStatsServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 20)

	// 一张确认收款的订单计入营收
	addCartLine(t, db, buyer.ID, product.ID, 2)
	paid, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if _, err := orderSvc.ConfirmOrder(paid.ID, seller.ID); err != nil {
		t.Fatalf("ConfirmOrder error: %v", err)
	}

	// 一张停留在 pending 的订单不计入
	addCartLine(t, db, buyer.ID, product.ID, 1)
	if _, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	}); err != nil {
		t.Fatalf("second CreateOrder error: %v", err)
	}

	stats, err := statsSvc.GetRevenueStats(RevenueStatsInput{
		SellerID: seller.ID,
		Period:   "day",
	})
	if err != nil {
		t.Fatalf("GetRevenueStats error: %v", err)
	}
	if stats.Orders != 1 {
		t.Fatalf("revenue orders want 1 got %d", stats.Orders)
	}
	if stats.ItemsSold != 2 {
		t.Fatalf("items sold want 2 got %d", stats.ItemsSold)
	}
	if stats.Revenue.String() != "200000.00" {
		t.Fatalf("revenue want 200000.00 got %s", stats.Revenue.String())
	}
	if len(stats.TopProducts) != 1 || stats.TopProducts[0].ProductID != product.ID {
		t.Fatalf("unexpected top products: %+v", stats.TopProducts)
	}
	if len(stats.Trends) == 0 {
		t.Fatalf("expected at least one trend bucket")
	}
}

func TestGetRevenueStatsInvalidPeriod(t *testing.T) {
	statsSvc, _, _ := setupStatsServiceTest(t)
	if _, err := statsSvc.GetRevenueStats(RevenueStatsInput{SellerID: 1, Period: "week"}); !errors.Is(err, ErrStatsPeriodInvalid) {
		t.Fatalf("expected ErrStatsPeriodInvalid, got %v", err)
	}
}

func TestResolveStatsRange(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)

	start, end, err := resolveStatsRange("day", 2026, 2, now)
	if err != nil {
		t.Fatalf("day range error: %v", err)
	}
	if start != time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local) || end != time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local) {
		t.Fatalf("unexpected day range: %v - %v", start, end)
	}

	start, end, err = resolveStatsRange("month", 2025, 0, now)
	if err != nil {
		t.Fatalf("month range error: %v", err)
	}
	if start.Year() != 2025 || end.Year() != 2026 {
		t.Fatalf("unexpected month range: %v - %v", start, end)
	}

	start, end, err = resolveStatsRange("year", 0, 0, now)
	if err != nil {
		t.Fatalf("year range error: %v", err)
	}
	if end != time.Date(2027, 1, 1, 0, 0, 0, 0, time.Local) || start != time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local) {
		t.Fatalf("unexpected year range: %v - %v", start, end)
	}

	if _, _, err := resolveStatsRange("hour", 0, 0, now); !errors.Is(err, ErrStatsPeriodInvalid) {
		t.Fatalf("expected ErrStatsPeriodInvalid, got %v", err)
	}
}
