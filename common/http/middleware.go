package http

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ubiproject-star/okey/common/jwts"
	"github.com/ubiproject-star/okey/common/log"
)

const (
	CtxPlayerID   = "playerID"
	CtxPlayerName = "playerName"
	CtxRequestID  = "requestID"
)

// LoggerMiddleware 记录请求耗时
func LoggerMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		start := time.Now()
		method, path := c.Method(), c.Path()
		log.Debug("HTTP Request: %s %s from %s", method, path, c.ClientIP())
		c.ginCtx.Next()
		log.Debug("HTTP Response: %s %s completed in %v", method, path, time.Since(start))
		return nil
	}
}

func RequestIDMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(CtxRequestID, requestID)
		c.SetHeader("X-Request-ID", requestID)
		return nil
	}
}

// AuthMiddleware 校验 Authorization: Bearer <token>，把玩家身份写入上下文
func AuthMiddleware(secret string) MiddlewareFunc {
	return func(c *Context) error {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.Unauthorized("missing authorization token")
			c.Abort()
			return nil
		}
		claims, err := jwts.ParseToken(token, secret)
		if err != nil {
			log.Warn("HTTP 鉴权失败 remote=%s err=%v", c.ClientIP(), err)
			c.Unauthorized("invalid token")
			c.Abort()
			return nil
		}
		c.Set(CtxPlayerID, claims.PlayerID)
		c.Set(CtxPlayerName, claims.Name)
		return nil
	}
}
