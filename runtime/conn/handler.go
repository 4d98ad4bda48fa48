package conn

import (
	"context"
	"errors"
	"time"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/runtime/game"
	"github.com/ubiproject-star/okey/runtime/game/share"
	"github.com/ubiproject-star/okey/runtime/march/application/service"
)

const handlerTimeout = 3 * time.Second

// handleMessage 玩家消息路由
func (w *Worker) handleMessage(client *LongConnection, raw []byte) {
	if !client.limiter.Allow() {
		client.SendEvent(&share.ErrorEvent{Message: "请求过于频繁", Kind: "protocol_violation"})
		return
	}
	cmd, err := share.DecodeCommand(raw)
	if err != nil {
		log.Warn("客户端[%s] 命令解析失败: %v", client.ConnID, err)
		client.SendEvent(&share.ErrorEvent{Message: err.Error(), Kind: "protocol_violation"})
		return
	}

	switch c := cmd.(type) {
	case *share.HeartbeatCommand:
	case *share.JoinQueueCommand:
		w.joinQueue(client, c)
	case share.RoomCommand:
		c.Bind(client.PlayerID, client.Origin())
		w.game.Dispatch(c)
	default:
		log.Warn("客户端[%s] 未处理的命令: %s", client.ConnID, cmd.CommandType())
	}
}

// joinQueue 已有进行中的对局时直接恢复，不再排队
func (w *Worker) joinQueue(client *LongConnection, cmd *share.JoinQueueCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	roomID, err := w.game.ActiveRoomOf(ctx, client.PlayerID)
	if err == nil {
		log.Info("玩家 %s 仍在房间 %s 中, 恢复对局", client.PlayerID, roomID)
		if err := w.game.Reconnect(ctx, client.PlayerID, client.Origin()); err != nil {
			log.Warn("玩家 %s 恢复对局失败: %v", client.PlayerID, err)
		}
		return
	}
	if !errors.Is(err, game.ErrNoActiveRoom) {
		log.Error("查询玩家 %s 进行中的房间失败: %v", client.PlayerID, err)
		client.SendEvent(&share.ErrorEvent{Message: "排队失败，请稍后重试"})
		return
	}

	name := cmd.Name
	if name == "" {
		name = client.Name
	}
	ticket := &service.Ticket{
		PlayerID: client.PlayerID,
		Name:     name,
		Rating:   cmd.Rating,
		Origin:   client.Origin(),
	}
	if err := w.match.JoinQueue(ctx, ticket); err != nil {
		log.Error("玩家 %s 排队失败: %v", client.PlayerID, err)
		client.SendEvent(&share.ErrorEvent{Message: "排队失败，请稍后重试"})
	}
}
