package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
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
	svc := NewOrderService(db,
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		30000,
	)
	return svc, db
}

func createOrderTestUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	user := models.User{
		Email:        fmt.Sprintf("%s_%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "x",
		FullName:     "Test " + role,
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createOrderTestProduct(t *testing.T, db *gorm.DB, sellerID uint, name string, price int64, stock int) models.Product {
	t.Helper()
	category := models.Category{Name: fmt.Sprintf("cat_%s_%d", name, time.Now().UnixNano())}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		SellerID:      sellerID,
		CategoryID:    category.ID,
		Name:          name,
		Price:         models.NewMoneyFromInt(price),
		StockQuantity: stock,
		Status:        constants.ProductStatusActive,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func addCartLine(t *testing.T, db *gorm.DB, userID, productID uint, quantity int) {
	t.Helper()
	if err := db.Create(&models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
}

func testShippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName: "Nguyen Van A",
		Phone:    "0901234567",
		Address:  "12 Nguyen Hue, District 1, Ho Chi Minh City",
	}
}

func productStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.StockQuantity
}

func TestCreateOrderComputesTotalsAndClearsCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	p1 := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	p2 := createOrderTestProduct(t, db, seller.ID, "Mug", 50000, 5)
	addCartLine(t, db, buyer.ID, p1.ID, 2)
	addCartLine(t, db, buyer.ID, p2.ID, 1)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "cod",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if order.Subtotal.String() != "250000.00" {
		t.Fatalf("subtotal want 250000.00 got %s", order.Subtotal.String())
	}
	if order.ShippingFee.String() != "30000.00" {
		t.Fatalf("shipping fee want 30000.00 got %s", order.ShippingFee.String())
	}
	if order.TotalAmount.String() != "280000.00" {
		t.Fatalf("total want 280000.00 got %s", order.TotalAmount.String())
	}
	if len(order.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(order.Items))
	}
	if order.OrderNo == "" {
		t.Fatalf("order no should be generated")
	}

	if got := productStock(t, db, p1.ID); got != 8 {
		t.Fatalf("p1 stock want 8 got %d", got)
	}
	if got := productStock(t, db, p2.ID); got != 4 {
		t.Fatalf("p2 stock want 4 got %d", got)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart should be cleared, got %d rows", cartCount)
	}

	// 订单项是创建时刻的快照
	if order.Items[0].ProductName == "" || order.Items[0].SellerID != seller.ID {
		t.Fatalf("unexpected snapshot item: %+v", order.Items[0])
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	p1 := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	p2 := createOrderTestProduct(t, db, seller.ID, "Mug", 50000, 1)
	addCartLine(t, db, buyer.ID, p1.ID, 2)
	addCartLine(t, db, buyer.ID, p2.ID, 3)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %T", err)
	}
	if stockErr.ProductID != p2.ID || stockErr.Available != 1 || stockErr.Requested != 3 {
		t.Fatalf("unexpected stock error detail: %+v", stockErr)
	}

	// 事务回滚：第一个商品的扣减也要还原
	if got := productStock(t, db, p1.ID); got != 10 {
		t.Fatalf("p1 stock want 10 got %d", got)
	}
	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount)
	if cartCount != 2 {
		t.Fatalf("cart should be untouched, got %d rows", cartCount)
	}
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("no order should be created, got %d", orderCount)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCreateOrderIncompleteAddress(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: models.ShippingAddress{FullName: "A", Phone: " "},
	})
	if !errors.Is(err, ErrAddressIncomplete) {
		t.Fatalf("expected ErrAddressIncomplete, got %v", err)
	}
}

func TestCreateOrderRejectsUnknownPaymentMethod(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "paypal",
	})
	if !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("expected ErrPaymentMethodInvalid, got %v", err)
	}
}

func TestCancelOrderByBuyerRestoresStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	addCartLine(t, db, buyer.ID, product.ID, 4)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if got := productStock(t, db, product.ID); got != 6 {
		t.Fatalf("stock after order want 6 got %d", got)
	}

	cancelled, err := svc.CancelOrderByBuyer(order.ID, buyer.ID, "changed my mind")
	if err != nil {
		t.Fatalf("CancelOrderByBuyer error: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.CancelledBy != constants.CancelledByBuyer {
		t.Fatalf("cancelled_by want buyer got %s", cancelled.CancelledBy)
	}
	if got := productStock(t, db, product.ID); got != 10 {
		t.Fatalf("stock after cancel want 10 got %d", got)
	}
}

func TestCancelOrderByBuyerOnlyPending(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	addCartLine(t, db, buyer.ID, product.ID, 1)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusShipped).Error; err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	_, err = svc.CancelOrderByBuyer(order.ID, buyer.ID, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCancelOrderBySellerPaidRequiresReason(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	addCartLine(t, db, buyer.ID, product.ID, 2)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if _, err := svc.ConfirmOrder(order.ID, seller.ID); err != nil {
		t.Fatalf("ConfirmOrder error: %v", err)
	}

	if _, err := svc.CancelOrderBySeller(order.ID, seller.ID, "  "); !errors.Is(err, ErrCancelReasonMissing) {
		t.Fatalf("expected ErrCancelReasonMissing, got %v", err)
	}

	cancelled, err := svc.CancelOrderBySeller(order.ID, seller.ID, "out of stock at warehouse")
	if err != nil {
		t.Fatalf("CancelOrderBySeller error: %v", err)
	}
	if cancelled.CancelledBy != constants.CancelledBySeller {
		t.Fatalf("cancelled_by want seller got %s", cancelled.CancelledBy)
	}
	if got := productStock(t, db, product.ID); got != 10 {
		t.Fatalf("stock after cancel want 10 got %d", got)
	}
}

func TestSellerLifecycleTransitions(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	addCartLine(t, db, buyer.ID, product.ID, 1)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 发货前必须先确认收款
	if _, err := svc.StartShipping(order.ID, seller.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for pending->shipped, got %v", err)
	}

	confirmed, err := svc.ConfirmOrder(order.ID, seller.ID)
	if err != nil {
		t.Fatalf("ConfirmOrder error: %v", err)
	}
	if confirmed.Status != constants.OrderStatusPaid || confirmed.PaidAt == nil {
		t.Fatalf("unexpected confirmed order: status=%s paid_at=%v", confirmed.Status, confirmed.PaidAt)
	}

	if _, err := svc.StartProcessing(order.ID, seller.ID); err != nil {
		t.Fatalf("StartProcessing error: %v", err)
	}
	if _, err := svc.StartShipping(order.ID, seller.ID); err != nil {
		t.Fatalf("StartShipping error: %v", err)
	}

	// 确认收货只能由买家在 shipped 之后做
	delivered, err := svc.ConfirmDelivery(order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("ConfirmDelivery error: %v", err)
	}
	if delivered.Status != constants.OrderStatusDelivered {
		t.Fatalf("status want delivered got %s", delivered.Status)
	}

	// 终态之后不允许再推进
	if _, err := svc.ConfirmDelivery(order.ID, buyer.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from delivered, got %v", err)
	}
}

func TestSellerWithoutItemsCannotTouchOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	other := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	addCartLine(t, db, buyer.ID, product.ID, 1)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if _, err := svc.ConfirmOrder(order.ID, other.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for unrelated seller, got %v", err)
	}
	if _, err := svc.GetOrderForSeller(order.ID, other.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for unrelated seller view, got %v", err)
	}
}

func TestSellerViewFiltersItems(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	sellerA := createOrderTestUser(t, db, constants.RoleSeller)
	sellerB := createOrderTestUser(t, db, constants.RoleSeller)
	pa := createOrderTestProduct(t, db, sellerA.ID, "Earphones", 100000, 10)
	pb := createOrderTestProduct(t, db, sellerB.ID, "Mug", 50000, 10)
	addCartLine(t, db, buyer.ID, pa.ID, 1)
	addCartLine(t, db, buyer.ID, pb.ID, 1)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	view, err := svc.GetOrderForSeller(order.ID, sellerA.ID)
	if err != nil {
		t.Fatalf("GetOrderForSeller error: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].SellerID != sellerA.ID {
		t.Fatalf("seller view should only contain own items: %+v", view.Items)
	}
	// 卖家视角金额按自己的行重算，不含运费
	if view.Subtotal.String() != "100000.00" || view.TotalAmount.String() != "100000.00" {
		t.Fatalf("seller totals should cover own lines only: subtotal=%s total=%s", view.Subtotal, view.TotalAmount)
	}

	buyerView, err := svc.GetOrderForBuyer(order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("GetOrderForBuyer error: %v", err)
	}
	if len(buyerView.Items) != 2 {
		t.Fatalf("buyer view should contain all items, got %d", len(buyerView.Items))
	}
}

func TestTransitionTable(t *testing.T) {
	allowed := map[string]map[string]bool{
		constants.OrderStatusPending:    {constants.OrderStatusPaid: true, constants.OrderStatusCancelled: true},
		constants.OrderStatusPaid:       {constants.OrderStatusProcessing: true, constants.OrderStatusShipped: true, constants.OrderStatusCancelled: true},
		constants.OrderStatusProcessing: {constants.OrderStatusShipped: true},
		constants.OrderStatusShipped:    {constants.OrderStatusDelivered: true},
	}
	for _, from := range constants.AllOrderStatuses {
		for _, to := range constants.AllOrderStatuses {
			want := allowed[from][to]
			if got := isTransitionAllowed(from, to); got != want {
				t.Fatalf("transition %s -> %s: want %v got %v", from, to, want, got)
			}
		}
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	no := generateOrderNo()
	if len(no) != 3+14+6 {
		t.Fatalf("unexpected order no length: %s", no)
	}
	if no[:3] != "ORD" {
		t.Fatalf("order no should start with ORD: %s", no)
	}
	if no == generateOrderNo() && no == generateOrderNo() {
		t.Fatalf("order no should vary between calls")
	}
}

// singleConn sqlite 单写库：测试里收紧到单连接，
// 并发事务排队执行而不是互相报 busy
func singleConn(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
}

func TestCancelOrderStaleStatusDoesNotRestock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 5)
	addCartLine(t, db, buyer.ID, product.ID, 2)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 两份快照都在取消前读到 pending
	first, err := svc.GetOrderForBuyer(order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("load first snapshot failed: %v", err)
	}
	second, err := svc.GetOrderForBuyer(order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("load second snapshot failed: %v", err)
	}

	if _, err := svc.cancelOrder(first, constants.CancelledByBuyer, ""); err != nil {
		t.Fatalf("first cancel error: %v", err)
	}
	// 过期快照翻不动状态，也不回补库存
	if _, err := svc.cancelOrder(second, constants.CancelledByBuyer, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stale cancel should fail with invalid transition, got %v", err)
	}

	if got := productStock(t, db, product.ID); got != 5 {
		t.Fatalf("stock must be restored exactly once, want 5 got %d", got)
	}
}

func TestCancelOrderStaleAfterPaymentConfirmed(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 5)
	addCartLine(t, db, buyer.ID, product.ID, 2)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 买家取消和收款确认赛跑：取消一方拿的是 pending 的过期快照
	stale, err := svc.GetOrderForBuyer(order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if _, err := svc.ConfirmOrder(order.ID, seller.ID); err != nil {
		t.Fatalf("ConfirmOrder error: %v", err)
	}

	if _, err := svc.cancelOrder(stale, constants.CancelledByBuyer, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel against a paid order must fail, got %v", err)
	}

	var updated models.Order
	if err := db.First(&updated, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if updated.Status != constants.OrderStatusPaid {
		t.Fatalf("order must stay paid, got %s", updated.Status)
	}
	if got := productStock(t, db, product.ID); got != 3 {
		t.Fatalf("stock must not be restituted, want 3 got %d", got)
	}
}

func TestCancelOrderConcurrentRestocksOnce(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	singleConn(t, db)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 5)
	addCartLine(t, db, buyer.ID, product.ID, 2)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          buyer.ID,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	start := make(chan struct{})
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = svc.CancelOrderByBuyer(order.ID, buyer.ID, "changed my mind")
		}(i)
	}
	close(start)
	wg.Wait()

	var cancelled, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, ErrInvalidTransition):
			rejected++
		default:
			t.Fatalf("unexpected cancel error: %v", err)
		}
	}
	if cancelled != 1 || rejected != 1 {
		t.Fatalf("exactly one cancel must win: cancelled=%d rejected=%d", cancelled, rejected)
	}
	if got := productStock(t, db, product.ID); got != 5 {
		t.Fatalf("stock must be restored exactly once, want 5 got %d", got)
	}
}

func TestCreateOrderConcurrentLastUnit(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	singleConn(t, db)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 1)

	const buyers = 4
	users := make([]models.User, buyers)
	for i := range users {
		users[i] = createOrderTestUser(t, db, constants.RoleCustomer)
		addCartLine(t, db, users[i].ID, product.ID, 1)
	}

	start := make(chan struct{})
	results := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = svc.CreateOrder(CreateOrderInput{
				UserID:          users[i].ID,
				ShippingAddress: testShippingAddress(),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var created, outOfStock int
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected create error: %v", err)
		}
	}
	if created != 1 || outOfStock != buyers-1 {
		t.Fatalf("last unit must sell exactly once: created=%d out_of_stock=%d", created, outOfStock)
	}
	if got := productStock(t, db, product.ID); got != 0 {
		t.Fatalf("stock want 0 got %d", got)
	}
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 1 {
		t.Fatalf("order count want 1 got %d", orderCount)
	}
}

func TestListOrdersRejectsUnknownStatusFilter(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	if _, _, err := svc.ListOrdersForBuyer(repository.OrderListFilter{UserID: 1, Status: "refunded"}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
	if _, _, err := svc.ListOrdersForSeller(repository.OrderListFilter{SellerID: 1, Status: "refunded"}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
	if _, _, err := svc.ListOrdersForBuyer(repository.OrderListFilter{UserID: 1, Status: constants.OrderStatusPending}); err != nil {
		t.Fatalf("valid status filter should pass, got %v", err)
	}
}
