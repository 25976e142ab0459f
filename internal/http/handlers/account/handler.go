package account

import "github.com/choviet-next/internal/provider"

// Handler 登录态接口处理器入口
// 说明：购物车、订单、支付、资料、卖家商品与统计等需鉴权的 API。
type Handler struct {
	*provider.Container
}

// New 创建登录态接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
