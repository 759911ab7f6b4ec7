package public

import "github.com/tierledger/internal/provider"

// Handler 参与者侧与回调接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
