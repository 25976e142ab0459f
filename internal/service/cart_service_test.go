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

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestAddItemMergesQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)

	if _, err := svc.AddItem(buyer.ID, product.ID, 2); err != nil {
		t.Fatalf("first AddItem error: %v", err)
	}
	detail, err := svc.AddItem(buyer.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("second AddItem error: %v", err)
	}

	if len(detail.Items) != 1 {
		t.Fatalf("merged cart should have 1 line, got %d", len(detail.Items))
	}
	if detail.Items[0].Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", detail.Items[0].Quantity)
	}
	if detail.TotalItems != 5 {
		t.Fatalf("total items want 5 got %d", detail.TotalItems)
	}
	if detail.TotalPrice.String() != "500000.00" {
		t.Fatalf("total price want 500000.00 got %s", detail.TotalPrice.String())
	}
}

func TestAddItemMergedQuantityCannotExceedStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 5)

	if _, err := svc.AddItem(buyer.ID, product.ID, 4); err != nil {
		t.Fatalf("first AddItem error: %v", err)
	}
	_, err := svc.AddItem(buyer.ID, product.ID, 2)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on merge, got %v", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.Requested != 6 || stockErr.Available != 5 {
		t.Fatalf("unexpected stock error detail: %v", err)
	}

	// 失败的加购不改变已有行
	detail, err := svc.Get(buyer.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if detail.Items[0].Quantity != 4 {
		t.Fatalf("quantity should stay 4, got %d", detail.Items[0].Quantity)
	}
}

func TestAddItemGuards(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	inactive := createOrderTestProduct(t, db, seller.ID, "Hidden", 100000, 10)
	if err := db.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("status", constants.ProductStatusInactive).Error; err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	if _, err := svc.AddItem(buyer.ID, inactive.ID, 1); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable, got %v", err)
	}
	if _, err := svc.AddItem(buyer.ID, 99999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.AddItem(buyer.ID, inactive.ID, 0); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 5)

	detail, err := svc.AddItem(buyer.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	itemID := detail.Items[0].ID

	updated, err := svc.UpdateItem(buyer.ID, itemID, 5)
	if err != nil {
		t.Fatalf("UpdateItem error: %v", err)
	}
	if updated.Items[0].Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", updated.Items[0].Quantity)
	}

	if _, err := svc.UpdateItem(buyer.ID, itemID, 6); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if _, err := svc.UpdateItem(buyer.ID, itemID, 0); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}

	// 别人的购物车行摸不到
	other := createOrderTestUser(t, db, constants.RoleCustomer)
	if _, err := svc.UpdateItem(other.ID, itemID, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound for other user, got %v", err)
	}
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	p1 := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)
	p2 := createOrderTestProduct(t, db, seller.ID, "Mug", 50000, 10)

	detail, err := svc.AddItem(buyer.ID, p1.ID, 1)
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if _, err := svc.AddItem(buyer.ID, p2.ID, 1); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}

	after, err := svc.RemoveItem(buyer.ID, detail.Items[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	if len(after.Items) != 1 {
		t.Fatalf("cart should have 1 line after removal, got %d", len(after.Items))
	}

	if _, err := svc.RemoveItem(buyer.ID, detail.Items[0].ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound for removed item, got %v", err)
	}

	if err := svc.Clear(buyer.ID); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	empty, err := svc.Get(buyer.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(empty.Items) != 0 || empty.TotalItems != 0 {
		t.Fatalf("cart should be empty, got %+v", empty)
	}
}

func TestGetSkipsDeletedProducts(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	buyer := createOrderTestUser(t, db, constants.RoleCustomer)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	product := createOrderTestProduct(t, db, seller.ID, "Earphones", 100000, 10)

	if _, err := svc.AddItem(buyer.ID, product.ID, 1); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if err := db.Delete(&models.Product{}, product.ID).Error; err != nil {
		t.Fatalf("delete product failed: %v", err)
	}

	detail, err := svc.Get(buyer.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(detail.Items) != 0 {
		t.Fatalf("deleted product line should be skipped, got %+v", detail.Items)
	}
}
