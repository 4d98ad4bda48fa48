package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context 封装 gin.Context，提供统一的请求/响应接口
type Context struct {
	ginCtx *gin.Context
}

func newContext(c *gin.Context) *Context {
	return &Context{ginCtx: c}
}

func (c *Context) GetParam(key string) string {
	return c.ginCtx.Param(key)
}

func (c *Context) GetQuery(key string) string {
	return c.ginCtx.Query(key)
}

func (c *Context) GetHeader(key string) string {
	return c.ginCtx.GetHeader(key)
}

func (c *Context) BindJSON(obj any) error {
	return c.ginCtx.ShouldBindJSON(obj)
}

func (c *Context) JSON(code int, obj any) {
	c.ginCtx.JSON(code, obj)
}

func (c *Context) SetHeader(key, value string) {
	c.ginCtx.Header(key, value)
}

func (c *Context) ClientIP() string {
	return c.ginCtx.ClientIP()
}

func (c *Context) Method() string {
	return c.ginCtx.Request.Method
}

func (c *Context) Path() string {
	return c.ginCtx.Request.URL.Path
}

func (c *Context) Set(key string, value any) {
	c.ginCtx.Set(key, value)
}

func (c *Context) GetString(key string) string {
	return c.ginCtx.GetString(key)
}

func (c *Context) Abort() {
	c.ginCtx.Abort()
}

func (c *Context) Request() *http.Request {
	return c.ginCtx.Request
}
