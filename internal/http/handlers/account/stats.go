package account

import (
	"strconv"

	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"
	"github.com/choviet-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOrderStats 卖家订单状态统计
func (h *Handler) GetOrderStats(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	stats, err := h.OrderStatsService.GetStatusStats(sellerID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}

// GetRevenueStats 卖家营收统计（period=day|month|year）
func (h *Handler) GetRevenueStats(c *gin.Context) {
	sellerID, ok := getUserID(c)
	if !ok {
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	stats, err := h.OrderStatsService.GetRevenueStats(service.RevenueStatsInput{
		SellerID: sellerID,
		Period:   c.DefaultQuery("period", "day"),
		Year:     year,
		Month:    month,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}
