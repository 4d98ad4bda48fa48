package service

import "context"

// GameService 外部撮合服务的入口：直接给四个座位开局
type GameService interface {
	CreateRoom(ctx context.Context, req *CreateRoomReq) (*CreateRoomResp, error)
}

// SeatReq 一个座位。ConnectionID 为空表示玩家尚未连接，连上后走重连
type SeatReq struct {
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	ConnectionID string `json:"connectionId,omitempty"`
	ConnectorID  string `json:"connectorId,omitempty"`
}

type CreateRoomReq struct {
	Players []SeatReq `json:"players"` // 按座位顺序，座位 0 先手
}

type CreateRoomResp struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}
