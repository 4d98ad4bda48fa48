package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc func(*Context) error
type MiddlewareFunc func(*Context) error

// HttpServer gin 的薄封装，业务处理函数返回 error 时统一回 500
type HttpServer struct {
	engine *gin.Engine
	server *http.Server
	port   int
}

type ServerOption func(*HttpServer)

func WithPort(port int) ServerOption {
	return func(s *HttpServer) {
		s.port = port
	}
}

func WithMode(mode string) ServerOption {
	return func(s *HttpServer) {
		if mode != "" {
			gin.SetMode(mode)
		}
	}
}

func NewHttpServer(opts ...ServerOption) *HttpServer {
	server := &HttpServer{port: 8080}
	// gin.SetMode 需要在 gin.New 之前调用
	for _, opt := range opts {
		opt(server)
	}
	server.engine = gin.New()
	server.engine.Use(gin.Recovery())
	return server
}

func (s *HttpServer) wrapHandler(handler HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := newContext(c)
		if err := handler(ctx); err != nil {
			ctx.InternalServerError(err.Error())
		}
	}
}

func (s *HttpServer) wrapMiddleware(middleware MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := newContext(c)
		if err := middleware(ctx); err != nil {
			ctx.InternalServerError(err.Error())
			c.Abort()
			return
		}
		if c.IsAborted() {
			return
		}
		c.Next()
	}
}

func (s *HttpServer) GET(path string, handler HandlerFunc) {
	s.engine.GET(path, s.wrapHandler(handler))
}

func (s *HttpServer) POST(path string, handler HandlerFunc) {
	s.engine.POST(path, s.wrapHandler(handler))
}

// Handle 挂载原生 http.Handler，例如 websocket 升级
func (s *HttpServer) Handle(method, path string, handler http.Handler) {
	s.engine.Handle(method, path, gin.WrapH(handler))
}

// Use 添加全局中间件
func (s *HttpServer) Use(middlewares ...MiddlewareFunc) {
	for _, middleware := range middlewares {
		s.engine.Use(s.wrapMiddleware(middleware))
	}
}

func (s *HttpServer) Group(relativePath string, middlewares ...MiddlewareFunc) *RouterGroup {
	ginGroup := s.engine.Group(relativePath)
	for _, middleware := range middlewares {
		ginGroup.Use(s.wrapMiddleware(middleware))
	}
	return &RouterGroup{group: ginGroup, server: s}
}

type RouterGroup struct {
	group  *gin.RouterGroup
	server *HttpServer
}

func (rg *RouterGroup) GET(path string, handler HandlerFunc) {
	rg.group.GET(path, rg.server.wrapHandler(handler))
}

func (rg *RouterGroup) POST(path string, handler HandlerFunc) {
	rg.group.POST(path, rg.server.wrapHandler(handler))
}

// Handler 返回底层路由，测试中配合 httptest 使用
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

func (s *HttpServer) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}
	return s.server.ListenAndServe()
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
