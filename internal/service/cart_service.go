package service

import (
	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CartItemDetail 购物车项明细（带商品实时信息）
type CartItemDetail struct {
	ID        uint         `json:"id"`
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	ImageURL  string       `json:"image_url"`
	UnitPrice models.Money `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	Subtotal  models.Money `json:"subtotal"`
	Stock     int          `json:"stock"`
	Available bool         `json:"available"` // 在售且库存满足数量
}

// CartDetail 购物车明细
type CartDetail struct {
	Items      []CartItemDetail `json:"items"`
	TotalItems int              `json:"total_items"`
	TotalPrice models.Money     `json:"total_price"`
}

// Get 获取购物车。价格与库存取商品实时值，
// 已删除的商品行直接跳过展示。
func (s *CartService) Get(userID uint) (*CartDetail, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	detail := &CartDetail{Items: make([]CartItemDetail, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		product := item.Product
		subtotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		detail.Items = append(detail.Items, CartItemDetail{
			ID:        item.ID,
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			Subtotal:  models.NewMoneyFromDecimal(subtotal),
			Stock:     product.StockQuantity,
			Available: product.Status == constants.ProductStatusActive && product.StockQuantity >= item.Quantity,
		})
		detail.TotalItems += item.Quantity
		total = total.Add(subtotal)
	}
	detail.TotalPrice = models.NewMoneyFromDecimal(total)
	return detail, nil
}

// AddItem 加购。同商品重复加购合并数量，合并后的总量仍需不超过库存。
func (s *CartService) AddItem(userID, productID uint, quantity int) (*CartDetail, error) {
	if quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Status != constants.ProductStatusActive {
		return nil, ErrProductNotAvailable
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	target := quantity
	if existing != nil {
		target += existing.Quantity
	}
	if target > product.StockQuantity {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   target,
			Available:   product.StockQuantity,
		}
	}

	if existing != nil {
		if err := s.cartRepo.UpdateQuantity(existing.ID, target); err != nil {
			return nil, err
		}
	} else {
		item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		if err := s.cartRepo.Create(item); err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

// UpdateItem 修改购物车项数量
func (s *CartService) UpdateItem(userID, itemID uint, quantity int) (*CartDetail, error) {
	if quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	item, err := s.cartRepo.GetByIDAndUser(itemID, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	product, err := s.productRepo.GetByID(item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status != constants.ProductStatusActive {
		return nil, ErrProductNotAvailable
	}
	if quantity > product.StockQuantity {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.StockQuantity,
		}
	}

	if err := s.cartRepo.UpdateQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// RemoveItem 移除购物车项
func (s *CartService) RemoveItem(userID, itemID uint) (*CartDetail, error) {
	item, err := s.cartRepo.GetByIDAndUser(itemID, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.DeleteByIDAndUser(itemID, userID); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}
