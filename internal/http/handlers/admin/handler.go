package admin

import "github.com/kosku-next/internal/provider"

// Handler 管理端 API 处理器，直接嵌入容器取用服务与仓库。
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
