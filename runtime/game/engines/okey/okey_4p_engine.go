package okey

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ubiproject-star/okey/common/config"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/core/domain/repository"
	"github.com/ubiproject-star/okey/runtime/game"
	"github.com/ubiproject-star/okey/runtime/game/engines"
	"github.com/ubiproject-star/okey/runtime/game/share"
)

const (
	storeTimeout       = 3 * time.Second
	autoPlayRetryDelay = time.Second
	eventQueueSize     = 256
)

/*
	房间引擎：每个房间一个 actor，事件串行处理
		读房间 -> 校验 -> 修改 -> 比较版本写回 -> 推送
	房间的权威状态只在存储里，引擎不缓存；本进程只持有这个房间的计时器对。
	进程重启或房间换到别的节点后，第一次处理到这个房间的事件时会按房间里的截止时间补上计时器。
*/

// Okey4p 四人 okey 引擎
type Okey4p struct {
	Worker    *game.Worker // 在 GameContainer 创建原型时注入
	RoomID    string
	Turns     *TurnManager
	Persister *GamePersister
	Conf      func() config.OkeyConf // 每次读取，配置热更新后下一回合生效
	Now       func() time.Time
	rng       *rand.Rand

	gameEvents chan share.GameEvent
	gameDone   chan struct{}
	actorExit  chan struct{}
	closed     atomic.Bool
	closeOnce  sync.Once
}

// TimeoutEvent 计时器触发，Seat 与 Deadline 标明它属于哪个回合
type TimeoutEvent struct {
	Kind     TimeoutKind
	Seat     int
	Deadline time.Time
}

func (e *TimeoutEvent) GetUserID() string    { return "" }
func (e *TimeoutEvent) GetEventType() string { return "Timeout" }

// NewOkey4p 创建引擎原型
func NewOkey4p(worker *game.Worker) *Okey4p {
	return &Okey4p{
		Worker: worker,
		Conf:   config.Okey,
		Now:    time.Now,
	}
}

func (eg *Okey4p) Clone() engines.Engine {
	return &Okey4p{
		Worker: eg.Worker,
		Conf:   eg.Conf,
		Now:    eg.Now,
	}
}

// InitializeEngine 绑定房间并启动事件循环
func (eg *Okey4p) InitializeEngine(roomID string) error {
	if eg.Worker == nil {
		return fmt.Errorf("引擎缺少 Worker")
	}
	eg.RoomID = roomID
	eg.Turns = NewTurnManager()
	eg.Persister = NewGamePersister(eg.Worker.GameRecords)
	eg.rng = NewRand()

	eg.closed.Store(false)
	eg.gameEvents = make(chan share.GameEvent, eventQueueSize)
	eg.gameDone = make(chan struct{})
	eg.actorExit = make(chan struct{})
	go eg.actorLoop()
	return nil
}

// actorLoop 游戏事件循环
func (eg *Okey4p) actorLoop() {
	defer close(eg.actorExit)
	for {
		select {
		case <-eg.gameDone:
			return
		case event := <-eg.gameEvents:
			eg.processEvent(event)
		}
	}
}

func (eg *Okey4p) NotifyEvent(event share.GameEvent) {
	if event == nil {
		return
	}
	if eg.closed.Load() {
		return
	}

	// 计时器事件不能丢：在计时器的 goroutine 里等待入队，直到引擎关闭
	if _, ok := event.(*TimeoutEvent); ok {
		select {
		case <-eg.gameDone:
		case eg.gameEvents <- event:
		}
		return
	}

	select {
	case <-eg.gameDone:
		return
	case eg.gameEvents <- event:
		return
	default:
		log.Warn("gameEvents 队列已满, room=%s, eventType=%s", eg.RoomID, event.GetEventType())
		return
	}
}

func (eg *Okey4p) processEvent(event share.GameEvent) {
	eventType := event.GetEventType()
	log.Debug("处理游戏事件: room=%s, type=%s, user=%s", eg.RoomID, eventType, event.GetUserID())

	switch eventType {
	case share.EventGameStart:
		if e, ok := event.(*share.GameStartEvent); ok {
			eg.handleGameStartEvent(e)
		}
	case share.CmdDrawTile:
		if e, ok := event.(*share.DrawTileEvent); ok {
			eg.handleDrawTileEvent(e)
		}
	case share.CmdDiscardTile:
		if e, ok := event.(*share.DiscardTileEvent); ok {
			eg.handleDiscardTileEvent(e)
		}
	case share.CmdFinishGame:
		if e, ok := event.(*share.FinishGameEvent); ok {
			eg.handleFinishGameEvent(e)
		}
	case share.EventReconnect:
		if e, ok := event.(*share.ReconnectEvent); ok {
			eg.handleReconnectEvent(e)
		}
	case "Timeout":
		if e, ok := event.(*TimeoutEvent); ok {
			eg.handleTimeoutEvent(e)
		}
	default:
		log.Warn("不支持的事件类型: %s", eventType)
	}
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func (eg *Okey4p) handleGameStartEvent(event *share.GameStartEvent) {
	err := eg.startGame(event.Players)
	if event.Result != nil {
		event.Result <- err
	}
	if err != nil {
		log.Error("房间 %s 开局失败: %v", eg.RoomID, err)
		eg.Terminate()
	}
}

func (eg *Okey4p) startGame(players []entity.RoomPlayer) error {
	ctx, cancel := storeContext()
	defer cancel()

	conf := eg.Conf()
	now := eg.Now()
	seated := append([]entity.RoomPlayer(nil), players...)
	for i := range seated {
		if seated[i].Score == 0 {
			seated[i].Score = conf.InitialScore
		}
	}
	room, err := NewRoom(eg.RoomID, seated, eg.rng, now)
	if err != nil {
		return err
	}
	room.TurnDeadline = eg.deadlineFor(room, now)
	if err := eg.Worker.RoomStates.CreateRoom(ctx, room, conf.RoomTTL()); err != nil {
		return fmt.Errorf("房间落库失败: %w", err)
	}
	for _, p := range room.Players {
		if err := eg.Worker.ActiveRooms.SetActiveRoom(ctx, p.ID, room.ID, conf.ActiveRoomTTL()); err != nil {
			log.Error("记录玩家 %s 的进行中房间失败: %v", p.ID, err)
		}
	}
	log.Info("房间 %s 开局, 指示牌 %s, okey %d-%s", room.ID, room.Indicator.ID, room.Joker.Value, room.Joker.Color)

	eg.pushGameStart(room)
	eg.ensureTimer(ctx, room)
	return nil
}

func (eg *Okey4p) handleDrawTileEvent(event *share.DrawTileEvent) {
	ctx, cancel := storeContext()
	defer cancel()
	room, ok := eg.loadRoom(ctx)
	if !ok {
		return
	}

	res, err := Draw(room, room.SeatOf(event.UserID), DrawSource(event.Source))
	if err != nil {
		eg.rejectCommand(ctx, room, event, event.Origin, err)
		return
	}
	if err := eg.saveRoom(ctx, room); err != nil {
		return
	}
	if res.DeckExhausted {
		eg.endGame(ctx, room, nil)
		return
	}
	eg.pushDraw(room, res)
	eg.ensureTimer(ctx, room)
}

func (eg *Okey4p) handleDiscardTileEvent(event *share.DiscardTileEvent) {
	ctx, cancel := storeContext()
	defer cancel()
	room, ok := eg.loadRoom(ctx)
	if !ok {
		return
	}

	seat := room.SeatOf(event.UserID)
	tile, err := Discard(room, seat, event.TileID)
	if err != nil {
		eg.rejectCommand(ctx, room, event, event.Origin, err)
		return
	}
	room.TurnDeadline = eg.deadlineFor(room, eg.Now())
	if err := eg.saveRoom(ctx, room); err != nil {
		return
	}
	eg.pushDiscard(room, seat, tile)
	eg.ensureTimer(ctx, room)
}

func (eg *Okey4p) handleFinishGameEvent(event *share.FinishGameEvent) {
	ctx, cancel := storeContext()
	defer cancel()
	room, ok := eg.loadRoom(ctx)
	if !ok {
		return
	}

	res, err := Finish(room, room.SeatOf(event.UserID), event.ArrangedHand)
	if err != nil {
		eg.rejectCommand(ctx, room, event, event.Origin, err)
		return
	}
	if err := eg.saveRoom(ctx, room); err != nil {
		return
	}
	eg.endGame(ctx, room, res.Arranged)
}

// handleReconnectEvent 更新座位上的连接，下发完整视图和弃牌堆
func (eg *Okey4p) handleReconnectEvent(event *share.ReconnectEvent) {
	ctx, cancel := storeContext()
	defer cancel()
	room, ok := eg.loadRoom(ctx)
	if !ok {
		eg.Worker.PushTo(event.Origin, &share.ReconnectFailed{Message: "对局已过期"})
		return
	}

	seat := room.SeatOf(event.UserID)
	if seat < 0 || room.State != entity.RoomPlaying {
		eg.Worker.PushTo(event.Origin, &share.ReconnectFailed{Message: "对局已结束"})
		if err := eg.Worker.ActiveRooms.ClearActiveRooms(ctx, room.ID, []string{event.UserID}); err != nil {
			log.Warn("清理玩家 %s 的进行中房间失败: %v", event.UserID, err)
		}
		eg.releaseIfOver(room)
		return
	}

	seatPlayer := &room.Players[seat]
	old := share.Origin{ConnectionID: seatPlayer.ConnectionID, ConnectorID: seatPlayer.ConnectorID}
	seatPlayer.ConnectionID = event.ConnectionID
	seatPlayer.ConnectorID = event.ConnectorID
	if err := eg.saveRoom(ctx, room); err != nil {
		eg.Worker.PushTo(event.Origin, &share.ErrorEvent{Message: "重连失败，请重试"})
		return
	}
	if old.ConnectionID != "" && old != event.Origin {
		eg.Worker.Kick(old)
	}
	if err := eg.Worker.ActiveRooms.SetActiveRoom(ctx, event.UserID, room.ID, eg.Conf().ActiveRoomTTL()); err != nil {
		log.Warn("刷新玩家 %s 的进行中房间失败: %v", event.UserID, err)
	}
	log.Info("玩家 %s 重连房间 %s, 座位 %d", event.UserID, room.ID, seat)

	eg.pushResync(room, seat, event.Origin)
	eg.ensureTimer(ctx, room)
}

func (eg *Okey4p) handleTimeoutEvent(event *TimeoutEvent) {
	ctx, cancel := storeContext()
	defer cancel()
	room, ok := eg.loadRoom(ctx)
	if !ok {
		return
	}
	if room.State != entity.RoomPlaying {
		eg.releaseIfOver(room)
		return
	}
	if room.TurnIndex != event.Seat || !room.TurnDeadline.Equal(event.Deadline) {
		log.Debug("房间 %s 已进入新回合, 忽略过期计时器 seat=%d", eg.RoomID, event.Seat)
		eg.ensureTimer(ctx, room)
		return
	}

	switch event.Kind {
	case TimeoutWarning:
		eg.pushWarning(room, eg.Now())
	case TimeoutAction:
		eg.autoPlay(ctx, room)
	}
}

// autoPlay 机器人回合或真人超时，替当前回合玩家出牌
func (eg *Okey4p) autoPlay(ctx context.Context, room *entity.GameRoom) {
	move, err := PlayAutoMove(room)
	if err != nil {
		log.Error("房间 %s 托管出牌失败: %v", eg.RoomID, err)
		eg.Turns.Retry(autoPlayRetryDelay, eg.onTimer)
		return
	}
	if move.Discard != nil {
		room.TurnDeadline = eg.deadlineFor(room, eg.Now())
	}
	if err := eg.saveRoom(ctx, room); err != nil {
		eg.Turns.Retry(autoPlayRetryDelay, eg.onTimer)
		return
	}
	if move.Drawn != nil && move.Drawn.DeckExhausted {
		eg.endGame(ctx, room, nil)
		return
	}
	log.Debug("房间 %s 座位 %d 托管出牌 %s", eg.RoomID, move.Seat, move.Discard.ID)
	if move.Drawn != nil {
		eg.pushDraw(room, move.Drawn)
	}
	eg.pushDiscard(room, move.Seat, *move.Discard)
	eg.ensureTimer(ctx, room)
}

// endGame 胡牌或牌堆摸空：取消计时器、广播结算、清理进行中房间、归档
func (eg *Okey4p) endGame(ctx context.Context, room *entity.GameRoom, revealed []*entity.Tile) {
	eg.Turns.Cancel()
	eg.pushGameOver(room, revealed)
	if err := eg.Worker.ActiveRooms.ClearActiveRooms(ctx, room.ID, room.PlayerIDs()); err != nil {
		log.Error("房间 %s 清理进行中房间失败: %v", room.ID, err)
	}
	eg.Persister.Archive(ctx, room, revealed)
	log.Info("房间 %s 结束, reason=%s, winner=%s", room.ID, room.EndReason, room.WinnerID)
	eg.Terminate()
}

func (eg *Okey4p) rejectCommand(ctx context.Context, room *entity.GameRoom, event share.GameEvent, origin share.Origin, err error) {
	log.Warn("房间 %s 拒绝命令 %s: user=%s, kind=%s, err=%v", eg.RoomID, event.GetEventType(), event.GetUserID(), Classify(err), err)
	eg.pushError(origin, err)
	if eg.releaseIfOver(room) {
		return
	}
	eg.ensureTimer(ctx, room)
}

// releaseIfOver 已结束的房间在存储里保留到过期，迟到的命令会重新挂载引擎，处理完即销毁
func (eg *Okey4p) releaseIfOver(room *entity.GameRoom) bool {
	if room.State == entity.RoomPlaying {
		return false
	}
	eg.Turns.Cancel()
	eg.Terminate()
	return true
}

// loadRoom 房间不存在时丢弃事件并销毁引擎
func (eg *Okey4p) loadRoom(ctx context.Context) (*entity.GameRoom, bool) {
	room, err := eg.Worker.RoomStates.GetRoom(ctx, eg.RoomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		log.Debug("房间 %s 不存在或已过期, 丢弃事件", eg.RoomID)
		eg.Turns.Cancel()
		eg.Terminate()
		return nil, false
	}
	if err != nil {
		log.Error("读取房间 %s 失败: %v", eg.RoomID, err)
		return nil, false
	}
	return room, true
}

// saveRoom 比较版本写回。版本冲突说明别的进程先改了房间，这次命令作废
func (eg *Okey4p) saveRoom(ctx context.Context, room *entity.GameRoom) error {
	room.UpdatedAt = eg.Now()
	err := eg.Worker.RoomStates.SaveRoom(ctx, room, eg.Conf().RoomTTL())
	if errors.Is(err, repository.ErrVersionConflict) {
		log.Warn("房间 %s 版本冲突, 丢弃本次修改", eg.RoomID)
		return err
	}
	if err != nil {
		log.Error("保存房间 %s 失败: %v", eg.RoomID, err)
	}
	return err
}

func (eg *Okey4p) deadlineFor(room *entity.GameRoom, now time.Time) time.Time {
	conf := eg.Conf()
	if room.Players[room.TurnIndex].IsBot() {
		return now.Add(conf.BotTurn())
	}
	return now.Add(conf.HumanTurn())
}

// ensureTimer 进行中的房间必须有属于当前回合的计时器，没有就按房间里的截止时间补上
func (eg *Okey4p) ensureTimer(ctx context.Context, room *entity.GameRoom) {
	if room.State != entity.RoomPlaying {
		eg.Turns.Cancel()
		return
	}
	if room.TurnDeadline.IsZero() {
		room.TurnDeadline = eg.deadlineFor(room, eg.Now())
		if err := eg.saveRoom(ctx, room); err != nil {
			return
		}
	}
	if eg.Turns.ArmedFor(room.TurnIndex, room.TurnDeadline) {
		return
	}
	eg.Turns.Arm(room.TurnIndex, room.TurnDeadline, eg.Conf().WarningLead(), eg.Now(), eg.onTimer)
}

func (eg *Okey4p) onTimer(kind TimeoutKind, seat int, deadline time.Time) {
	eg.NotifyEvent(&TimeoutEvent{Kind: kind, Seat: seat, Deadline: deadline})
}

// Terminate 请求 Worker 销毁本房间引擎
func (eg *Okey4p) Terminate() {
	if eg.Worker == nil || eg.RoomID == "" {
		return
	}
	eg.Worker.RequestDestroyRoom(eg.RoomID)
}

func (eg *Okey4p) Close() {
	eg.closeOnce.Do(func() {
		eg.closed.Store(true)
		if eg.Turns != nil {
			eg.Turns.Cancel()
		}
		if eg.gameDone != nil {
			close(eg.gameDone)
		}
		if eg.actorExit != nil {
			<-eg.actorExit
		}
	})
}
