package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/core/domain/repository"
	"github.com/ubiproject-star/okey/core/infrastructure/message/node"
	"github.com/ubiproject-star/okey/core/infrastructure/message/transfer"
	"github.com/ubiproject-star/okey/runtime/game/engines"
	"github.com/ubiproject-star/okey/runtime/game/share"
)

/*
	1.房间引擎的注册表：收到局内命令，导航到正确的房间引擎；本节点没有时按房间 ID 挂载
	2.开局：给四个座位创建房间，等待引擎发牌落库后返回房间 ID
	3.断线重连：按玩家查进行中的房间，转交引擎下发快照
	4.推送总线：连接在本节点时直接投递，否则经 nats 发给连接所在节点
*/

const storeTimeout = 3 * time.Second

var ErrNoActiveRoom = errors.New("no active room")

// LocalDelivery 本节点的连接层（connector）
type LocalDelivery interface {
	Deliver(connectionIDs []string, payload []byte)
	Kick(connectionID string)
}

type Worker struct {
	RoomManager  *RoomManager
	MiddleWorker *node.NatsWorker // 为空时只做本节点投递
	NodeID       string

	RoomStates  repository.RoomStateRepository
	ActiveRooms repository.ActiveRoomRepository
	GameRecords repository.GameRecordRepository // 为空时不归档
	Local       LocalDelivery

	EngineType engines.EngineType

	destroyRoomCh chan string
	destroyMu     sync.Mutex
	destroyClosed bool
}

func NewWorker(nodeID string, roomStates repository.RoomStateRepository, activeRooms repository.ActiveRoomRepository) *Worker {
	worker := &Worker{
		RoomManager:   NewRoomManager(),
		NodeID:        nodeID,
		RoomStates:    roomStates,
		ActiveRooms:   activeRooms,
		EngineType:    engines.OKEY_4P_ENGINE,
		destroyRoomCh: make(chan string, 128),
	}

	go worker.destroyRoomLoop()

	return worker
}

func (w *Worker) destroyRoomLoop() {
	for roomID := range w.destroyRoomCh {
		if roomID == "" {
			continue
		}
		if err := w.RoomManager.DeleteRoom(roomID); err != nil {
			log.Warn("Worker destroyRoomLoop 删除房间失败: %v", err)
		}
	}
}

func (w *Worker) RequestDestroyRoom(roomID string) {
	if roomID == "" {
		return
	}

	w.destroyMu.Lock()
	defer w.destroyMu.Unlock()
	if w.destroyClosed {
		return
	}

	select {
	case w.destroyRoomCh <- roomID:
	default:
		log.Warn("Worker RequestDestroyRoom 队列已满, roomID=%s", roomID)
	}
}

// Start 接入 nats，url 为空时单节点运行
func (w *Worker) Start(natsURL string) error {
	if natsURL == "" {
		log.Info("Game Worker[%s] 未配置 nats, 单节点运行", w.NodeID)
		return nil
	}
	w.MiddleWorker = node.NewNatsWorker()
	w.registerHandlers()
	if err := w.MiddleWorker.Run(natsURL, w.NodeID); err != nil {
		return fmt.Errorf("启动 NATS 监听失败: %w", err)
	}
	log.Info("Game Worker[%s] 启动 NATS 监听成功, topic: %s", w.NodeID, w.NodeID)
	return nil
}

// registerHandlers 其他节点转发过来的推送与踢线
func (w *Worker) registerHandlers() {
	w.MiddleWorker.RegisterHandler(transfer.GamePush, func(packet *transfer.ServicePacket) {
		if w.Local == nil {
			return
		}
		w.Local.Deliver(packet.PushConns, packet.Data)
	})
	w.MiddleWorker.RegisterHandler(transfer.ConnectorKick, func(packet *transfer.ServicePacket) {
		if w.Local == nil {
			return
		}
		for _, connID := range packet.PushConns {
			w.Local.Kick(connID)
		}
	})
}

// Push 推送给若干座位，没有连接的座位（机器人、离线玩家）跳过
func (w *Worker) Push(targets []entity.RoomPlayer, ev share.OutboundEvent) {
	payload, err := share.Encode(ev)
	if err != nil {
		log.Error("Worker Push 编码失败: %v", err)
		return
	}
	byNode := make(map[string][]string)
	for _, p := range targets {
		if p.ConnectionID == "" {
			continue
		}
		byNode[p.ConnectorID] = append(byNode[p.ConnectorID], p.ConnectionID)
	}
	for connectorID, conns := range byNode {
		w.deliver(connectorID, transfer.GamePush, conns, payload)
	}
}

// PushTo 私有回复给发出命令的那条连接
func (w *Worker) PushTo(origin share.Origin, ev share.OutboundEvent) {
	if origin.ConnectionID == "" {
		return
	}
	w.Push([]entity.RoomPlayer{{ConnectionID: origin.ConnectionID, ConnectorID: origin.ConnectorID}}, ev)
}

// Kick 断开玩家的旧连接（可能在别的节点）
func (w *Worker) Kick(origin share.Origin) {
	if origin.ConnectionID == "" {
		return
	}
	w.deliver(origin.ConnectorID, transfer.ConnectorKick, []string{origin.ConnectionID}, nil)
}

func (w *Worker) deliver(connectorID, route string, conns []string, payload []byte) {
	if connectorID == "" || connectorID == w.NodeID || w.MiddleWorker == nil {
		if w.Local == nil {
			return
		}
		if route == transfer.ConnectorKick {
			for _, connID := range conns {
				w.Local.Kick(connID)
			}
			return
		}
		w.Local.Deliver(conns, payload)
		return
	}
	err := w.MiddleWorker.PushMessage(&transfer.ServicePacket{
		Source:      w.NodeID,
		Destination: connectorID,
		Route:       route,
		PushConns:   conns,
		Data:        payload,
	})
	if err != nil {
		log.Error("Worker 推送到节点 %s 失败, route: %s, err: %v", connectorID, route, err)
	}
}

// Dispatch 把玩家命令交给房间引擎，房间不存在时丢弃
func (w *Worker) Dispatch(cmd share.RoomCommand) {
	roomID := cmd.GetRoomID()
	engine, ok := w.RoomManager.GetRoom(roomID)
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if _, err := w.RoomStates.GetRoom(ctx, roomID); err != nil {
			log.Debug("Worker Dispatch 房间 %s 不可用, 丢弃 %s: %v", roomID, cmd.GetEventType(), err)
			return
		}
		var err error
		engine, _, err = w.RoomManager.AttachRoom(roomID, w.EngineType)
		if err != nil {
			log.Error("Worker Dispatch 挂载房间 %s 失败: %v", roomID, err)
			return
		}
	}
	engine.NotifyEvent(cmd)
}

// CreateRoom 给四个座位开一个新房间，引擎发牌并落库后返回房间 ID
func (w *Worker) CreateRoom(ctx context.Context, players []entity.RoomPlayer) (string, error) {
	if len(players) != entity.SeatCount {
		return "", fmt.Errorf("需要 %d 名玩家, 实际 %d", entity.SeatCount, len(players))
	}
	roomID := uuid.NewString()
	engine, _, err := w.RoomManager.AttachRoom(roomID, w.EngineType)
	if err != nil {
		return "", err
	}

	result := make(chan error, 1)
	engine.NotifyEvent(&share.GameStartEvent{Players: players, Result: result})
	select {
	case err := <-result:
		if err != nil {
			w.RequestDestroyRoom(roomID)
			return "", err
		}
		log.Info("Worker 创建房间成功: %s", roomID)
		return roomID, nil
	case <-ctx.Done():
		w.RequestDestroyRoom(roomID)
		return "", fmt.Errorf("创建房间超时: %w", ctx.Err())
	}
}

// ActiveRoomOf 玩家进行中的房间
func (w *Worker) ActiveRoomOf(ctx context.Context, playerID string) (string, error) {
	roomID, err := w.ActiveRooms.GetActiveRoom(ctx, playerID)
	if errors.Is(err, repository.ErrActiveRoomNotFound) {
		return "", ErrNoActiveRoom
	}
	return roomID, err
}

// Reconnect 玩家的新连接：有进行中的房间就交给引擎重新同步。
// 没有进行中的房间时，只有玩过的玩家会收到 reconnect_failed，新玩家什么都不推
func (w *Worker) Reconnect(ctx context.Context, playerID string, origin share.Origin) error {
	roomID, err := w.ActiveRoomOf(ctx, playerID)
	if err != nil {
		if errors.Is(err, ErrNoActiveRoom) {
			w.reportNoActiveRoom(ctx, playerID, origin)
		}
		return err
	}
	engine, _, err := w.RoomManager.AttachRoom(roomID, w.EngineType)
	if err != nil {
		return err
	}
	ev := &share.ReconnectEvent{}
	ev.Bind(playerID, origin)
	engine.NotifyEvent(ev)
	return nil
}

func (w *Worker) reportNoActiveRoom(ctx context.Context, playerID string, origin share.Origin) {
	played, err := w.ActiveRooms.HasPlayed(ctx, playerID)
	if err != nil {
		log.Warn("查询玩家 %s 对局记录失败: %v", playerID, err)
		return
	}
	if !played {
		log.Debug("玩家 %s 没有玩过，无需恢复", playerID)
		return
	}
	w.PushTo(origin, &share.ReconnectFailed{Message: "对局已结束"})
}

// RoomSummary 房间的公开视图，不包含任何手牌
type RoomSummary struct {
	RoomID       string             `json:"roomId"`
	State        entity.RoomState   `json:"state"`
	Players      []share.PlayerView `json:"players"`
	TurnIndex    int                `json:"turnIndex"`
	HandSizes    []int              `json:"handSizes"`
	DrawPileLeft int                `json:"drawPileLeft"`
	DiscardPiles [][]entity.Tile    `json:"discardPiles"`
	Indicator    entity.Tile        `json:"indicator"`
	WinnerID     string             `json:"winnerId,omitempty"`
	EndReason    entity.EndReason   `json:"endReason,omitempty"`
	TurnDeadline time.Time          `json:"turnDeadline"`
}

func (w *Worker) RoomSummary(ctx context.Context, roomID string) (*RoomSummary, error) {
	room, err := w.RoomStates.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sizes := make([]int, entity.SeatCount)
	for seat := range sizes {
		sizes[seat] = len(room.Hands[seat])
	}
	return &RoomSummary{
		RoomID:       room.ID,
		State:        room.State,
		Players:      share.NewPlayerViews(room.Players),
		TurnIndex:    room.TurnIndex,
		HandSizes:    sizes,
		DrawPileLeft: len(room.DrawPile),
		DiscardPiles: share.DiscardPiles(room),
		Indicator:    room.Indicator,
		WinnerID:     room.WinnerID,
		EndReason:    room.EndReason,
		TurnDeadline: room.TurnDeadline,
	}, nil
}

func (w *Worker) Close() {
	w.destroyMu.Lock()
	if !w.destroyClosed {
		close(w.destroyRoomCh)
		w.destroyClosed = true
	}
	w.destroyMu.Unlock()

	w.RoomManager.CloseAll()
	if w.MiddleWorker != nil {
		w.MiddleWorker.Close()
	}
	log.Info("Game Worker[%s] 已关闭", w.NodeID)
}
