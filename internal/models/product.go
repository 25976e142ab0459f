package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表。库存量 stock_quantity 是可售性的唯一事实来源：
// 下单扣减、取消回补、卖家编辑都直接改这一列，任何时刻不允许为负。
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                            // 主键
	SellerID      uint           `gorm:"not null;index" json:"seller_id"`                                 // 卖家ID
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`                               // 分类ID
	Name          string         `gorm:"not null;index" json:"name"`                                      // 商品名称
	Description   string         `gorm:"type:text" json:"description"`                                    // 商品描述
	Price         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`             // 单价
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`                        // 库存量（>= 0）
	ImageURL      string         `gorm:"type:varchar(500)" json:"image_url"`                              // 图片访问地址
	ImageID       string         `gorm:"type:varchar(200)" json:"image_id"`                               // 内容寻址存储中的图片ID
	Status        string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 上架状态（active/inactive）
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                      // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	// 关联
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	Seller   *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`     // 卖家信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
