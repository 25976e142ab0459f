package models

import (
	"strings"

	"github.com/choviet-next/internal/logger"
)

// EnsureDefaultCategories 初始化默认商品分类（已存在则跳过）
func EnsureDefaultCategories(names []string) error {
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		var count int64
		if err := DB.Model(&Category{}).Where("name = ?", trimmed).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&Category{Name: trimmed}).Error; err != nil {
			return err
		}
		logger.Infow("default_category_created", "name", trimmed)
	}
	return nil
}
