package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ShippingAddress 收货地址快照。下单时序列化存入订单行，
// 买家之后修改资料不影响历史订单。
type ShippingAddress struct {
	FullName string `json:"full_name"`      // 收件人姓名
	Phone    string `json:"phone"`          // 收件人电话
	Address  string `json:"address"`        // 收货地址
	Note     string `json:"note,omitempty"` // 备注（可选）
}

// Value 实现 driver.Valuer 接口
func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return nil
}

// Order 订单表。订单行只改状态、从不删除，取消也只是状态变更。
type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`                                        // 主键
	OrderNo         string          `gorm:"uniqueIndex;not null" json:"order_no"`                        // 订单编号
	UserID          uint            `gorm:"index;not null" json:"user_id"`                               // 买家ID
	Status          string          `gorm:"index;not null" json:"status"`                                // 订单状态
	Subtotal        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`       // 商品小计
	ShippingFee     Money           `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`   // 运费（固定）
	TotalAmount     Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`   // 实付金额
	PaymentMethod   string          `gorm:"type:varchar(20)" json:"payment_method"`                      // 支付方式（cod/vnpay）
	ShippingAddress ShippingAddress `gorm:"type:json;not null" json:"shipping_address"`                  // 收货地址快照
	PaidAt          *time.Time      `gorm:"index" json:"paid_at"`                                        // 支付时间
	CancelledAt     *time.Time      `gorm:"index" json:"cancelled_at"`                                   // 取消时间
	CancelledBy     string          `gorm:"type:varchar(20)" json:"cancelled_by,omitempty"`              // 取消方（buyer/seller）
	CancelReason    string          `gorm:"type:varchar(500)" json:"cancel_reason,omitempty"`            // 取消原因
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt       time.Time       `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`                                              // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	Buyer *User       `gorm:"foreignKey:UserID" json:"buyer,omitempty"`  // 买家信息
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
