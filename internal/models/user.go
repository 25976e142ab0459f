package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（买家 / 卖家共用一张表，按 role 区分）
type User struct {
	ID               uint           `gorm:"primarykey" json:"id"`              // 主键
	Email            string         `gorm:"uniqueIndex;not null" json:"email"` // 邮箱（注册后不可修改）
	PasswordHash     string         `gorm:"not null" json:"-"`                 // 密码哈希（不返回给前端）
	FullName         string         `gorm:"not null" json:"full_name"`         // 姓名
	Phone            string         `gorm:"type:varchar(20)" json:"phone"`     // 电话
	Address          string         `gorm:"type:varchar(500)" json:"address"`  // 默认收货地址
	Role             string         `gorm:"index;not null" json:"role"`        // 角色（customer/seller，对外映射为 buyer/seller）
	ResetToken       string         `gorm:"index" json:"-"`                    // 重置密码令牌
	ResetTokenExpiry *time.Time     `json:"-"`                                 // 重置令牌过期时间
	LastLoginAt      *time.Time     `json:"last_login_at"`                     // 最后登录时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`           // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
