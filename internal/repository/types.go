package repository

import "github.com/choviet-next/internal/models"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	SellerID     uint
	Search       string
	MinPrice     *models.Money
	MaxPrice     *models.Money
	Sort         string // newest / price_asc / price_desc / name
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint // 按买家过滤
	SellerID uint // 按卖家（订单项归属）过滤
	Status   string
	OrderNo  string
}
