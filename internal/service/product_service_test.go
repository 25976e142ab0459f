package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	categorySvc := NewCategoryService(repository.NewCategoryRepository(db))
	svc := NewProductService(repository.NewProductRepository(db), categorySvc, nil)
	return svc, db
}

func TestCreateProductAutoCreatesCategory(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	seller := createOrderTestUser(t, db, constants.RoleSeller)

	product, err := svc.Create(context.Background(), CreateProductInput{
		SellerID:     seller.ID,
		CategoryName: "Handmade Crafts",
		Name:         "Bamboo Basket",
		Description:  "Woven by hand",
		Price:        decimal.NewFromInt(120000),
		Stock:        15,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if product.Status != constants.ProductStatusActive {
		t.Fatalf("default status want active got %s", product.Status)
	}
	if product.Category.Name != "Handmade Crafts" {
		t.Fatalf("category should be auto created, got %+v", product.Category)
	}

	// 同名分类复用，不重复建
	second, err := svc.Create(context.Background(), CreateProductInput{
		SellerID:     seller.ID,
		CategoryName: "Handmade Crafts",
		Name:         "Bamboo Tray",
		Price:        decimal.NewFromInt(90000),
		Stock:        5,
	})
	if err != nil {
		t.Fatalf("second Create error: %v", err)
	}
	if second.CategoryID != product.CategoryID {
		t.Fatalf("same category name should resolve to same category")
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count != 1 {
		t.Fatalf("category count want 1 got %d", count)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	seller := createOrderTestUser(t, db, constants.RoleSeller)

	base := CreateProductInput{
		SellerID:     seller.ID,
		CategoryName: "Electronics",
		Name:         "Earphones",
		Price:        decimal.NewFromInt(100000),
		Stock:        1,
	}

	bad := base
	bad.Price = decimal.Zero
	if _, err := svc.Create(context.Background(), bad); !errors.Is(err, ErrProductPriceInvalid) {
		t.Fatalf("expected ErrProductPriceInvalid, got %v", err)
	}

	bad = base
	bad.Stock = -1
	if _, err := svc.Create(context.Background(), bad); !errors.Is(err, ErrProductStockInvalid) {
		t.Fatalf("expected ErrProductStockInvalid, got %v", err)
	}

	bad = base
	bad.CategoryName = "  "
	if _, err := svc.Create(context.Background(), bad); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound for blank category, got %v", err)
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	seller := createOrderTestUser(t, db, constants.RoleSeller)
	other := createOrderTestUser(t, db, constants.RoleSeller)

	product, err := svc.Create(context.Background(), CreateProductInput{
		SellerID:     seller.ID,
		CategoryName: "Electronics",
		Name:         "Earphones",
		Price:        decimal.NewFromInt(100000),
		Stock:        10,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	newPrice := decimal.NewFromInt(150000)
	if _, err := svc.Update(context.Background(), product.ID, other.ID, UpdateProductInput{Price: &newPrice}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other seller, got %v", err)
	}

	updated, err := svc.Update(context.Background(), product.ID, seller.ID, UpdateProductInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Price.String() != "150000.00" {
		t.Fatalf("price want 150000.00 got %s", updated.Price.String())
	}

	inactive := constants.ProductStatusInactive
	updated, err = svc.Update(context.Background(), product.ID, seller.ID, UpdateProductInput{Status: &inactive})
	if err != nil {
		t.Fatalf("Update status error: %v", err)
	}
	if updated.Status != constants.ProductStatusInactive {
		t.Fatalf("status want inactive got %s", updated.Status)
	}

	// 下架商品对公开接口不可见，卖家自己仍可见
	if _, err := svc.GetPublicByID(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product should be hidden from public, got %v", err)
	}
	if _, err := svc.GetBySeller(product.ID, seller.ID); err != nil {
		t.Fatalf("seller should still see own inactive product: %v", err)
	}
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	seller := createOrderTestUser(t, db, constants.RoleSeller)

	product, err := svc.Create(context.Background(), CreateProductInput{
		SellerID:     seller.ID,
		CategoryName: "Electronics",
		Name:         "Earphones",
		Price:        decimal.NewFromInt(100000),
		Stock:        10,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), product.ID, seller.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.GetBySeller(product.ID, seller.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product should be gone, got %v", err)
	}

	// 软删除：行还在，只是打了删除标记
	var raw models.Product
	if err := db.Unscoped().First(&raw, product.ID).Error; err != nil {
		t.Fatalf("load deleted row failed: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatalf("deleted_at should be set")
	}
}

func TestListPublicOnlyActive(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	seller := createOrderTestUser(t, db, constants.RoleSeller)

	if _, err := svc.Create(context.Background(), CreateProductInput{
		SellerID: seller.ID, CategoryName: "Electronics", Name: "Visible",
		Price: decimal.NewFromInt(100000), Stock: 1,
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateProductInput{
		SellerID: seller.ID, CategoryName: "Electronics", Name: "Hidden",
		Price: decimal.NewFromInt(100000), Stock: 1, Status: constants.ProductStatusInactive,
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	public, total, err := svc.ListPublic(repository.ProductListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListPublic error: %v", err)
	}
	if total != 1 || len(public) != 1 || public[0].Name != "Visible" {
		t.Fatalf("public list should only contain active products: total=%d items=%+v", total, public)
	}

	mine, total, err := svc.ListBySeller(seller.ID, repository.ProductListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListBySeller error: %v", err)
	}
	if total != 2 || len(mine) != 2 {
		t.Fatalf("seller list should contain both products, got total=%d", total)
	}
}
