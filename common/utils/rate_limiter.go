package utils

import (
	"sync"
	"time"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	rate       float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewRateLimiter rate 为每秒补充的令牌数，burst 为桶容量（允许的突发请求数）
func NewRateLimiter(rate int, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rate:       float64(rate),
		capacity:   float64(burst),
		tokens:     float64(burst),
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow 取走一个令牌，桶空时返回 false
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
	rl.lastRefill = now

	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}
