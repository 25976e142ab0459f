package account

import (
	"strconv"

	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/repository"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	CategoryName string          `json:"category_name" binding:"required"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	Stock        int             `json:"stock"`
	ImageURL     string          `json:"image_url"`
	ImageID      string          `json:"image_id"`
	Status       string          `json:"status"`
}

// CreateProduct 卖家创建商品（分类按名称自动补建）
func (h *Handler) CreateProduct(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	product, err := h.ProductService.Create(c.Request.Context(), service.CreateProductInput{
		SellerID:     sellerID,
		CategoryName: req.CategoryName,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		ImageURL:     req.ImageURL,
		ImageID:      req.ImageID,
		Status:       req.Status,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, "product created", product)
}

type updateProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	CategoryName *string          `json:"category_name"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
	ImageURL     *string          `json:"image_url"`
	ImageID      *string          `json:"image_id"`
	Status       *string          `json:"status"`
}

// UpdateProduct 卖家更新自己的商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	product, err := h.ProductService.Update(c.Request.Context(), productID, sellerID, service.UpdateProductInput{
		CategoryName: req.CategoryName,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		ImageURL:     req.ImageURL,
		ImageID:      req.ImageID,
		Status:       req.Status,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "product updated", product)
}

// DeleteProduct 卖家删除自己的商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), productID, sellerID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "product deleted", nil)
}

// ListSellerProducts 卖家自己的商品列表（含下架）
func (h *Handler) ListSellerProducts(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	products, total, err := h.ProductService.ListBySeller(sellerID, filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}
