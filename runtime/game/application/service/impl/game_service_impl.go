package impl

import (
	"context"
	"fmt"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/runtime/game/application/service"
)

// RoomCreator 由 game.Worker 实现
type RoomCreator interface {
	CreateRoom(ctx context.Context, players []entity.RoomPlayer) (string, error)
}

type GameServiceImpl struct {
	creator RoomCreator
}

func NewGameService(creator RoomCreator) service.GameService {
	return &GameServiceImpl{creator: creator}
}

// CreateRoom 校验座位表后开局。业务上的失败放在 resp 里，err 只留给调用方取消等情况
func (s *GameServiceImpl) CreateRoom(ctx context.Context, req *service.CreateRoomReq) (*service.CreateRoomResp, error) {
	if req == nil {
		return &service.CreateRoomResp{Message: "请求不能为空"}, nil
	}
	players, err := seatsOf(req.Players)
	if err != nil {
		return &service.CreateRoomResp{Message: err.Error()}, nil
	}

	roomID, err := s.creator.CreateRoom(ctx, players)
	if err != nil {
		log.Error("GameService 创建房间失败: %v", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &service.CreateRoomResp{Message: err.Error()}, nil
	}

	log.Info("GameService 创建房间成功: %s", roomID)
	return &service.CreateRoomResp{
		Success: true,
		RoomID:  roomID,
		Message: "房间创建成功",
	}, nil
}

func seatsOf(seats []service.SeatReq) ([]entity.RoomPlayer, error) {
	if len(seats) != entity.SeatCount {
		return nil, fmt.Errorf("需要 %d 个座位, 实际 %d", entity.SeatCount, len(seats))
	}
	seen := make(map[string]struct{}, len(seats))
	players := make([]entity.RoomPlayer, 0, len(seats))
	for i, seat := range seats {
		if seat.PlayerID == "" {
			return nil, fmt.Errorf("座位 %d 缺少玩家 ID", i)
		}
		if _, dup := seen[seat.PlayerID]; dup {
			return nil, fmt.Errorf("玩家 %s 重复入座", seat.PlayerID)
		}
		seen[seat.PlayerID] = struct{}{}
		name := seat.Name
		if name == "" {
			name = seat.PlayerID
		}
		players = append(players, entity.RoomPlayer{
			ID:           seat.PlayerID,
			Name:         name,
			Score:        seat.Score,
			ConnectionID: seat.ConnectionID,
			ConnectorID:  seat.ConnectorID,
		})
	}
	return players, nil
}
