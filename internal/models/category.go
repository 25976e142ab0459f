package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类表（按名称去重，商品创建时可自动建档）
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // 主键
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`     // 分类名称
	Description string         `gorm:"type:varchar(500)" json:"description"` // 分类描述
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
