package models

import "time"

// OrderItem 订单项表。商品名称、单价、卖家在下单时刻快照入行，
// 之后商品被改价或删除都不影响历史订单（有意的反范式设计）。
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID
	SellerID    uint      `gorm:"index;not null" json:"seller_id"`                          // 卖家ID快照
	ProductName string    `gorm:"not null" json:"product_name"`                             // 商品名称快照
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价快照
	Quantity    int       `gorm:"not null" json:"quantity"`                                 // 数量
	Subtotal    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`   // 小计（冗余存储，供统计）
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
