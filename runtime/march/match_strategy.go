package march

import (
	"github.com/ubiproject-star/okey/runtime/march/application/service"
)

// MatchStrategy 匹配策略接口
// 定义如何从队列中选出一桌
type MatchStrategy interface {
	// Match 选出最多 requiredPlayers 名玩家，返回选中的与剩下的
	Match(queue []*service.Ticket, requiredPlayers int) (picked, rest []*service.Ticket)
}

// PollStrategy 轮询策略（先来先服务）
// 从队列头部按顺序取出玩家
type PollStrategy struct{}

func NewPollStrategy() MatchStrategy {
	return &PollStrategy{}
}

func (s *PollStrategy) Match(queue []*service.Ticket, requiredPlayers int) ([]*service.Ticket, []*service.Ticket) {
	if requiredPlayers <= 0 || len(queue) == 0 {
		return nil, queue
	}
	n := min(requiredPlayers, len(queue))
	picked := append([]*service.Ticket(nil), queue[:n]...)
	rest := append([]*service.Ticket(nil), queue[n:]...)
	return picked, rest
}
