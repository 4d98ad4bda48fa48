package api

import (
	nethttp "net/http"

	"github.com/ubiproject-star/okey/common/http"
)

// RegisterRoutes 注册所有路由，ws 为长连接升级入口
func RegisterRoutes(server *http.HttpServer, h *Handlers, ws nethttp.Handler) {
	server.GET("/ping", PingHandler)
	server.Handle(nethttp.MethodGet, "/ws", ws)

	v1 := server.Group("/api/v1")
	{
		v1.POST("/session", h.SessionHandler)
		v1.GET("/rooms/:id/summary", h.RoomSummaryHandler)
	}
}
