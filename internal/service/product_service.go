package service

import (
	"context"
	"strings"

	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"
	"github.com/choviet-next/internal/storage/pinata"

	"github.com/shopspring/decimal"
)

// ProductService 商品服务
type ProductService struct {
	repo        repository.ProductRepository
	categorySvc *CategoryService
	store       *pinata.Client
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categorySvc *CategoryService, store *pinata.Client) *ProductService {
	return &ProductService{repo: repo, categorySvc: categorySvc, store: store}
}

// ListPublic 获取公开商品列表（仅在售商品）
func (s *ProductService) ListPublic(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	filter.WithCategory = true
	return s.repo.List(filter)
}

// GetPublicByID 获取公开商品详情
func (s *ProductService) GetPublicByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status != constants.ProductStatusActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListBySeller 获取卖家自己的商品列表（含下架商品）
func (s *ProductService) ListBySeller(sellerID uint, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.SellerID = sellerID
	filter.OnlyActive = false
	filter.WithCategory = true
	return s.repo.List(filter)
}

// GetBySeller 获取卖家自己的商品详情
func (s *ProductService) GetBySeller(id, sellerID uint) (*models.Product, error) {
	product, err := s.getOwned(id, sellerID)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	SellerID     uint
	CategoryName string
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	ImageURL     string
	ImageID      string
	Status       string
}

// Create 创建商品。分类按名称解析，不存在则自动补建。
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProductNotAvailable
	}
	price := input.Price.Round(2)
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	if input.Stock < 0 {
		return nil, ErrProductStockInvalid
	}
	status := normalizeProductStatus(input.Status)

	category, err := s.categorySvc.EnsureByName(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SellerID:      input.SellerID,
		CategoryID:    category.ID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Price:         models.NewMoneyFromDecimal(price),
		StockQuantity: input.Stock,
		ImageURL:      strings.TrimSpace(input.ImageURL),
		ImageID:       strings.TrimSpace(input.ImageID),
		Status:        status,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	product.Category = *category
	logger.Infow("product_created", "product_id", product.ID, "seller_id", input.SellerID)
	return product, nil
}

// UpdateProductInput 更新商品输入。nil 字段表示不修改。
type UpdateProductInput struct {
	CategoryName *string
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Stock        *int
	ImageURL     *string
	ImageID      *string
	Status       *string
}

// Update 更新卖家自己的商品。换图时旧图从固定存储解除。
func (s *ProductService) Update(ctx context.Context, id, sellerID uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.getOwned(id, sellerID)
	if err != nil {
		return nil, err
	}

	if input.CategoryName != nil {
		category, err := s.categorySvc.EnsureByName(ctx, *input.CategoryName)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.Category = *category
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProductNotAvailable
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		price := input.Price.Round(2)
		if price.LessThanOrEqual(decimal.Zero) {
			return nil, ErrProductPriceInvalid
		}
		product.Price = models.NewMoneyFromDecimal(price)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrProductStockInvalid
		}
		product.StockQuantity = *input.Stock
	}
	oldImageID := product.ImageID
	if input.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.ImageID != nil {
		product.ImageID = strings.TrimSpace(*input.ImageID)
	}
	if input.Status != nil {
		product.Status = normalizeProductStatus(*input.Status)
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	if oldImageID != "" && oldImageID != product.ImageID {
		s.unpinImage(ctx, oldImageID)
	}
	return product, nil
}

// Delete 删除卖家自己的商品（软删除），图片解除固定
func (s *ProductService) Delete(ctx context.Context, id, sellerID uint) error {
	product, err := s.getOwned(id, sellerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(product.ID); err != nil {
		return err
	}
	if product.ImageID != "" {
		s.unpinImage(ctx, product.ImageID)
	}
	logger.Infow("product_deleted", "product_id", product.ID, "seller_id", sellerID)
	return nil
}

func (s *ProductService) getOwned(id, sellerID uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return product, nil
}

// unpinImage 旧图解除固定失败只记日志，不影响主流程
func (s *ProductService) unpinImage(ctx context.Context, imageID string) {
	if s.store == nil || !s.store.Enabled() {
		return
	}
	if err := s.store.Remove(ctx, imageID); err != nil {
		logger.Warnw("product_image_unpin_failed", "image_id", imageID, "error", err)
	}
}

func normalizeProductStatus(raw string) string {
	if strings.ToLower(strings.TrimSpace(raw)) == constants.ProductStatusInactive {
		return constants.ProductStatusInactive
	}
	return constants.ProductStatusActive
}
