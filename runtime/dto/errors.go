package dto

import "errors"

// 连接相关错误
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendChanFull     = errors.New("send channel full")
)

// 鉴权与接入相关错误
var (
	ErrMissingToken     = errors.New("missing barrier token")
	ErrServerAtCapacity = errors.New("server at capacity")
)
