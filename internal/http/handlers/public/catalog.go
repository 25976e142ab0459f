package public

import (
	"strconv"

	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListCategories 获取分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to load categories", err)
		return
	}
	response.Success(c, categories)
}

// ListProducts 获取公开商品列表。
// 支持关键字搜索、分类 / 价格区间过滤与排序。
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = uint(id)
		}
	}
	if raw := c.Query("min_price"); raw != "" {
		if value, err := decimal.NewFromString(raw); err == nil {
			price := models.NewMoneyFromDecimal(value)
			filter.MinPrice = &price
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if value, err := decimal.NewFromString(raw); err == nil {
			price := models.NewMoneyFromDecimal(value)
			filter.MaxPrice = &price
		}
	}

	products, total, err := h.ProductService.ListPublic(filter)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 获取公开商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	product, err := h.ProductService.GetPublicByID(uint(id))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}
