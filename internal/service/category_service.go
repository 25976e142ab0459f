package service

import (
	"context"
	"strings"
	"time"

	"github.com/choviet-next/internal/cache"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"
)

const (
	categoryListCacheKey = "category:list"
	categoryListCacheTTL = 5 * time.Minute
)

// CategoryService 分类服务。分类由商品创建流程按名称自动补建，
// 公开列表走 Redis 缓存（未启用时直接查库）。
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List 获取分类列表
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	if cache.Enabled() {
		var cached []models.Category
		ok, err := cache.GetJSON(ctx, categoryListCacheKey, &cached)
		if err != nil {
			logger.Warnw("category_cache_read_failed", "error", err)
		}
		if ok {
			return cached, nil
		}
	}

	categories, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if cache.Enabled() {
		if err := cache.SetJSON(ctx, categoryListCacheKey, categories, categoryListCacheTTL); err != nil {
			logger.Warnw("category_cache_write_failed", "error", err)
		}
	}
	return categories, nil
}

// EnsureByName 按名称取分类，不存在则创建。
// 商品创建 / 更新时引用未知分类名走这里补建。
func (s *CategoryService) EnsureByName(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNotFound
	}
	category, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category = &models.Category{Name: name}
	if err := s.repo.Create(category); err != nil {
		// 并发补建撞唯一索引时回读既有行
		if existing, getErr := s.repo.GetByName(name); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	logger.Infow("category_auto_created", "category_id", category.ID, "name", name)
	return category, nil
}

// GetByID 获取分类
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) invalidateCache(ctx context.Context) {
	if !cache.Enabled() {
		return
	}
	if err := cache.Del(ctx, categoryListCacheKey); err != nil {
		logger.Warnw("category_cache_invalidate_failed", "error", err)
	}
}
