package repository

import (
	"context"
	"time"

	"github.com/ubiproject-star/okey/core/domain/entity"
)

// RoomStateRepository 房间权威状态存储，按房间 ID 寻址，带滑动过期
type RoomStateRepository interface {
	// GetRoom 不存在时返回 ErrRoomNotFound
	GetRoom(ctx context.Context, roomID string) (*entity.GameRoom, error)

	// CreateRoom 写入新房间，房间 ID 已存在时返回 ErrVersionConflict
	CreateRoom(ctx context.Context, room *entity.GameRoom, ttl time.Duration) error

	// SaveRoom 比较并写入：存储中的版本必须等于 room.Version，成功后 room.Version 加一，并刷新过期时间
	SaveRoom(ctx context.Context, room *entity.GameRoom, ttl time.Duration) error
}

// ActiveRoomRepository 玩家 -> 进行中房间的映射，用于断线重连
type ActiveRoomRepository interface {
	SetActiveRoom(ctx context.Context, playerID, roomID string, ttl time.Duration) error

	// GetActiveRoom 不存在时返回 ErrActiveRoomNotFound
	GetActiveRoom(ctx context.Context, playerID string) (string, error)

	// ClearActiveRooms 只删除仍指向 roomID 的映射，避免误删玩家已进入的新房间
	ClearActiveRooms(ctx context.Context, roomID string, playerIDs []string) error

	// HasPlayed 玩家近期是否入座过任何房间，用来区分“对局已结束”和“从未玩过”
	HasPlayed(ctx context.Context, playerID string) (bool, error)
}
