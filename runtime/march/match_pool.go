package march

import (
	"errors"
	"sync"
	"time"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/runtime/march/application/service"
)

var ErrPoolStopped = errors.New("match pool stopped")

// MatchPool 匹配池
// 凑满一桌立即开局；人数不足时从第一个人排队起等待 botFill，到点用机器人补位
type MatchPool struct {
	poolID          string
	strategy        MatchStrategy
	requiredPlayers int
	botFill         func() time.Duration // 每次读取，配置热更新后生效

	mu        sync.Mutex
	queue     []*service.Ticket
	fillTimer *time.Timer
	stopped   bool

	resultChan chan<- *service.MatchResult // 匹配结果 channel（只发送）
}

func NewMatchPool(poolID string, strategy MatchStrategy, botFill func() time.Duration, resultChan chan<- *service.MatchResult) *MatchPool {
	return &MatchPool{
		poolID:          poolID,
		strategy:        strategy,
		requiredPlayers: entity.SeatCount,
		botFill:         botFill,
		resultChan:      resultChan,
	}
}

// Join 入队，已在队列中的玩家只更新连接。onQueued 在匹配之前回调，携带当前排队人数
func (p *MatchPool) Join(ticket *service.Ticket, onQueued func(waiting int)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	replaced := false
	for i, queued := range p.queue {
		if queued.PlayerID == ticket.PlayerID {
			p.queue[i] = ticket
			replaced = true
			break
		}
	}
	if !replaced {
		p.queue = append(p.queue, ticket)
	}
	if onQueued != nil {
		onQueued(len(p.queue))
	}

	p.matchLocked()
	return nil
}

// Leave 出队，返回玩家是否在队列中
func (p *MatchPool) Leave(playerID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, queued := range p.queue {
		if queued.PlayerID != playerID {
			continue
		}
		p.queue = append(p.queue[:i], p.queue[i+1:]...)
		if len(p.queue) == 0 {
			p.stopFillLocked()
		}
		return true
	}
	return false
}

func (p *MatchPool) Waiting() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// matchLocked 先开满员的桌，剩下的人交给补位计时器
func (p *MatchPool) matchLocked() {
	for len(p.queue) >= p.requiredPlayers {
		picked, rest := p.strategy.Match(p.queue, p.requiredPlayers)
		p.queue = rest
		p.emitLocked(picked, 0)
	}
	if len(p.queue) == 0 {
		p.stopFillLocked()
		return
	}

	wait := p.botFill()
	if wait <= 0 {
		p.fillLocked()
		return
	}
	if p.fillTimer == nil {
		p.fillTimer = time.AfterFunc(wait, p.onFillTimer)
	}
}

func (p *MatchPool) onFillTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fillTimer = nil
	if p.stopped || len(p.queue) == 0 {
		return
	}
	p.fillLocked()
}

func (p *MatchPool) fillLocked() {
	p.stopFillLocked()
	picked, rest := p.strategy.Match(p.queue, p.requiredPlayers)
	p.queue = rest
	p.emitLocked(picked, p.requiredPlayers-len(picked))
}

func (p *MatchPool) emitLocked(picked []*service.Ticket, bots int) {
	if len(picked) == 0 {
		return
	}
	result := &service.MatchResult{PoolID: p.poolID, Tickets: picked, Bots: bots}
	select {
	case p.resultChan <- result:
		log.Debug("匹配池 [%s] 凑成一桌: 玩家 %d, 机器人 %d", p.poolID, len(picked), bots)
	default:
		log.Error("匹配池 [%s] 匹配结果 channel 已满，丢弃匹配结果: %d 个玩家", p.poolID, len(picked))
	}
}

func (p *MatchPool) stopFillLocked() {
	if p.fillTimer != nil {
		p.fillTimer.Stop()
		p.fillTimer = nil
	}
}

func (p *MatchPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.stopFillLocked()
	p.queue = nil
	log.Info("匹配池 [%s] 已停止", p.poolID)
}
