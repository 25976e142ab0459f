package public

import "github.com/choviet-next/internal/provider"

// Handler 公开接口处理器入口
// 说明：注册、登录、商品浏览与网关回调等无需登录态的 API。
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
