package service

import (
	"context"
	"time"

	"github.com/ubiproject-star/okey/runtime/game/share"
)

// MatchService 排队服务接口
type MatchService interface {
	JoinQueue(ctx context.Context, ticket *Ticket) error
	LeaveQueue(ctx context.Context, playerID string) error
}

// Ticket 一个排队中的玩家，Origin 是他排队时所在的连接
type Ticket struct {
	PlayerID string
	Name     string
	Rating   int
	Origin   share.Origin
	JoinedAt time.Time
}

// MatchResult 匹配结果，人数不足的座位由机器人补齐
type MatchResult struct {
	PoolID  string
	Tickets []*Ticket
	Bots    int
}
