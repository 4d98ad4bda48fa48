package march

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/runtime/game/share"
	"github.com/ubiproject-star/okey/runtime/march/application/service"
)

/*
	匹配器职责：
	1.维护先来先服务的排队池，不做段位与积分撮合
	2.凑满一桌或补位计时到点后，调用 game Worker 开局
	3.开局失败时通知桌上的玩家重新排队
*/

const (
	defaultPoolID     = "okey4"
	createRoomTimeout = 5 * time.Second
)

// RoomCreator 开局入口，由 game.Worker 实现
type RoomCreator interface {
	CreateRoom(ctx context.Context, players []entity.RoomPlayer) (string, error)
}

// Notifier 给排队中的连接回消息，由 game.Worker 实现
type Notifier interface {
	PushTo(origin share.Origin, ev share.OutboundEvent)
}

type Worker struct {
	NodeID          string
	pool            *MatchPool
	creator         RoomCreator
	notifier        Notifier
	matchResultChan chan *service.MatchResult // 统一的结果 channel
	stopChan        chan struct{}             // 停止信号
	wg              sync.WaitGroup            // 等待所有 goroutine 结束
	closeOnce       sync.Once
}

func NewWorker(nodeID string, creator RoomCreator, notifier Notifier, botFill func() time.Duration) *Worker {
	w := &Worker{
		NodeID:          nodeID,
		creator:         creator,
		notifier:        notifier,
		matchResultChan: make(chan *service.MatchResult, 1024),
		stopChan:        make(chan struct{}),
	}
	w.pool = NewMatchPool(defaultPoolID, NewPollStrategy(), botFill, w.matchResultChan)
	return w
}

// Start 启动匹配结果处理
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.processMatchResults(ctx)
	log.Info("March Worker[%s] 启动成功", w.NodeID)
}

func (w *Worker) JoinQueue(ctx context.Context, ticket *service.Ticket) error {
	if ticket == nil || ticket.PlayerID == "" {
		return fmt.Errorf("排队玩家不能为空")
	}
	if ticket.JoinedAt.IsZero() {
		ticket.JoinedAt = time.Now()
	}
	err := w.pool.Join(ticket, func(waiting int) {
		w.notifier.PushTo(ticket.Origin, &share.QueueJoined{Waiting: waiting})
	})
	if err != nil {
		return err
	}
	log.Info("玩家 %s 加入匹配队列, rating=%d", ticket.PlayerID, ticket.Rating)
	return nil
}

func (w *Worker) LeaveQueue(ctx context.Context, playerID string) error {
	if w.pool.Leave(playerID) {
		log.Info("玩家 %s 离开匹配队列", playerID)
	}
	return nil
}

// Waiting 当前排队人数
func (w *Worker) Waiting() int {
	return w.pool.Waiting()
}

// processMatchResults 统一处理所有匹配结果
func (w *Worker) processMatchResults(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case result := <-w.matchResultChan:
			if result == nil {
				continue
			}
			if err := w.handleMatchSuccess(ctx, result); err != nil {
				log.Error("March Worker[%s] 处理匹配结果失败: %v", w.NodeID, err)
			}
		case <-w.stopChan:
			log.Info("March Worker[%s] 匹配结果处理收到停止信号", w.NodeID)
			return
		case <-ctx.Done():
			log.Info("March Worker[%s] 匹配结果处理收到上下文取消信号", w.NodeID)
			return
		}
	}
}

// handleMatchSuccess 按排队顺序入座，空位补机器人，然后开局
func (w *Worker) handleMatchSuccess(ctx context.Context, result *service.MatchResult) error {
	players := seatPlayers(result)
	callCtx, cancel := context.WithTimeout(ctx, createRoomTimeout)
	defer cancel()

	roomID, err := w.creator.CreateRoom(callCtx, players)
	if err != nil {
		for _, ticket := range result.Tickets {
			w.notifier.PushTo(ticket.Origin, &share.ErrorEvent{Message: "开局失败，请重新排队"})
		}
		return fmt.Errorf("创建房间失败: %w", err)
	}
	log.Info("March Worker 匹配成功: poolID=%s, roomID=%s, 玩家 %d, 机器人 %d", result.PoolID, roomID, len(result.Tickets), result.Bots)
	return nil
}

func seatPlayers(result *service.MatchResult) []entity.RoomPlayer {
	players := make([]entity.RoomPlayer, 0, len(result.Tickets)+result.Bots)
	for _, ticket := range result.Tickets {
		players = append(players, entity.RoomPlayer{
			ID:           ticket.PlayerID,
			Name:         ticket.Name,
			ConnectionID: ticket.Origin.ConnectionID,
			ConnectorID:  ticket.Origin.ConnectorID,
		})
	}
	for i := 1; i <= result.Bots; i++ {
		players = append(players, entity.RoomPlayer{
			ID:   entity.BotIDPrefix + uuid.NewString(),
			Name: fmt.Sprintf("Bot %d", i),
		})
	}
	return players
}

func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		w.pool.Stop()
		close(w.stopChan)
		w.wg.Wait()
		log.Info("March Worker[%s] 已关闭", w.NodeID)
	})
}
