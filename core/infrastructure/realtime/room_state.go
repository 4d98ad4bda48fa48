package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ubiproject-star/okey/common/database"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/core/domain/repository"
)

const roomKey = "room" // room:<roomID> -> GameRoom JSON

// saveRoomScript 版本一致才覆盖，并刷新过期时间
// 返回 1 成功，0 版本冲突，-1 房间不存在
const saveRoomScript = `
local cur = redis.call('GET', KEYS[1])
if not cur then
	return -1
end
local room = cjson.decode(cur)
if tonumber(room['version']) ~= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

// RedisRoomStateRepository Redis 实现的房间状态仓储
type RedisRoomStateRepository struct {
	redis *database.RedisManager
}

func NewRedisRoomStateRepository(redis *database.RedisManager) repository.RoomStateRepository {
	return &RedisRoomStateRepository{
		redis: redis,
	}
}

func roomKeyOf(roomID string) string {
	return roomKey + ":" + roomID
}

func (r *RedisRoomStateRepository) GetRoom(ctx context.Context, roomID string) (*entity.GameRoom, error) {
	raw, err := r.redis.Get(ctx, roomKeyOf(roomID))
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取房间 %s 失败: %w", roomID, err)
	}

	var room entity.GameRoom
	if err := json.Unmarshal([]byte(raw), &room); err != nil {
		return nil, fmt.Errorf("解析房间 %s 失败: %w", roomID, err)
	}
	return &room, nil
}

func (r *RedisRoomStateRepository) CreateRoom(ctx context.Context, room *entity.GameRoom, ttl time.Duration) error {
	room.UpdatedAt = time.Now()
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("序列化房间 %s 失败: %w", room.ID, err)
	}

	ok, err := r.redis.SetNX(ctx, roomKeyOf(room.ID), string(payload), ttl)
	if err != nil {
		return fmt.Errorf("写入房间 %s 失败: %w", room.ID, err)
	}
	if !ok {
		return repository.ErrVersionConflict
	}
	return nil
}

func (r *RedisRoomStateRepository) SaveRoom(ctx context.Context, room *entity.GameRoom, ttl time.Duration) error {
	expected := room.Version
	room.Version++
	room.UpdatedAt = time.Now()

	payload, err := json.Marshal(room)
	if err != nil {
		room.Version = expected
		return fmt.Errorf("序列化房间 %s 失败: %w", room.ID, err)
	}

	result, err := r.redis.EvalScript(ctx, "okey:save_room", saveRoomScript,
		[]string{roomKeyOf(room.ID)}, expected, string(payload), ttl.Milliseconds())
	if err != nil {
		room.Version = expected
		return fmt.Errorf("保存房间 %s 失败: %w", room.ID, err)
	}

	switch code, _ := result.(int64); code {
	case 1:
		return nil
	case -1:
		room.Version = expected
		return repository.ErrRoomNotFound
	default:
		room.Version = expected
		return repository.ErrVersionConflict
	}
}
