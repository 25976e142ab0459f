package models

import "time"

// PaymentTransaction 支付流水。每次请求支付链接插入一行 pending，
// 网关回调把它推进到 success/failed；到达终态后不再改写。
type PaymentTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                        // 主键
	OrderID       uint      `gorm:"index;not null" json:"order_id"`              // 订单ID
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`   // 支付金额
	Method        string    `gorm:"not null" json:"method"`                      // 支付方式（vnpay）
	Status        string    `gorm:"index;not null" json:"status"`                // 状态（pending/success/failed）
	TransactionNo string    `gorm:"index" json:"transaction_no"`                 // 网关流水号
	BankCode      string    `gorm:"type:varchar(40)" json:"bank_code"`           // 银行代码
	ResponseCode  string    `gorm:"type:varchar(10)" json:"response_code"`       // 网关响应码
	PayDate       string    `gorm:"type:varchar(20)" json:"pay_date"`            // 网关支付时间（yyyyMMddHHmmss）
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`                     // 更新时间
}

// TableName 指定表名
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
