package account

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/provider"
	"github.com/choviet-next/internal/repository"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderHandlerTest(t *testing.T) (*service.OrderService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:account_order_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
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
	svc := service.NewOrderService(db,
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		30000,
	)
	return svc, db
}

// orderDetailEngine 挂一条订单详情路由，user_id 从测试头注入
func orderDetailEngine(h *Handler, userID uint) *gin.Engine {
	engine := gin.New()
	engine.GET("/orders/:id", func(c *gin.Context) {
		c.Set("user_id", userID)
		h.GetOrder(c)
	})
	return engine
}

func createHandlerTestOrder(t *testing.T, svc *service.OrderService, db *gorm.DB) (*models.Order, models.User, models.User) {
	t.Helper()
	buyer := models.User{Email: fmt.Sprintf("buyer_%d@example.com", time.Now().UnixNano()), PasswordHash: "x", FullName: "Buyer", Role: constants.RoleCustomer}
	seller := models.User{Email: fmt.Sprintf("seller_%d@example.com", time.Now().UnixNano()), PasswordHash: "x", FullName: "Seller", Role: constants.RoleSeller}
	for _, user := range []*models.User{&buyer, &seller} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	category := models.Category{Name: fmt.Sprintf("cat_%d", time.Now().UnixNano())}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		SellerID:      seller.ID,
		CategoryID:    category.ID,
		Name:          "Earphones",
		Price:         models.NewMoneyFromInt(100000),
		StockQuantity: 10,
		Status:        constants.ProductStatusActive,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := db.Create(&models.CartItem{UserID: buyer.ID, ProductID: product.ID, Quantity: 1}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	order, err := svc.CreateOrder(service.CreateOrderInput{
		UserID: buyer.ID,
		ShippingAddress: models.ShippingAddress{
			FullName: "Nguyen Van A",
			Phone:    "0901234567",
			Address:  "12 Nguyen Hue, District 1, Ho Chi Minh City",
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	return order, buyer, seller
}

func TestGetOrderFallsBackToSellerView(t *testing.T) {
	svc, db := setupOrderHandlerTest(t)
	order, buyer, seller := createHandlerTestOrder(t, svc, db)
	h := New(&provider.Container{OrderService: svc})

	// 买家拿整单
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	orderDetailEngine(h, buyer.ID).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("buyer request status want 200 got %d: %s", w.Code, w.Body.String())
	}

	// 卖家名下没这张单的买家视角，回退到卖家视角
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	orderDetailEngine(h, seller.ID).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("seller request status want 200 got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Items []struct {
				SellerID uint `json:"seller_id"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if !body.Success || len(body.Data.Items) != 1 || body.Data.Items[0].SellerID != seller.ID {
		t.Fatalf("seller fallback should return the seller view: %s", w.Body.String())
	}
}

func TestGetOrderStrangerGetsNotFound(t *testing.T) {
	svc, db := setupOrderHandlerTest(t)
	order, _, _ := createHandlerTestOrder(t, svc, db)
	h := New(&provider.Container{OrderService: svc})

	stranger := models.User{Email: fmt.Sprintf("stranger_%d@example.com", time.Now().UnixNano()), PasswordHash: "x", FullName: "Stranger", Role: constants.RoleCustomer}
	if err := db.Create(&stranger).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	orderDetailEngine(h, stranger.ID).ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("stranger request status want 404 got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetOrderDatabaseErrorIsNotMaskedAsNotFound(t *testing.T) {
	svc, db := setupOrderHandlerTest(t)
	order, buyer, _ := createHandlerTestOrder(t, svc, db)
	h := New(&provider.Container{OrderService: svc})

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close sql db failed: %v", err)
	}

	// 底层查询失败必须按内部错误上抛，不得吞成 not found
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	orderDetailEngine(h, buyer.ID).ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("db error status want 500 got %d: %s", w.Code, w.Body.String())
	}
}
