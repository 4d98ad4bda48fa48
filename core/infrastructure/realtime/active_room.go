package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ubiproject-star/okey/common/database"
	"github.com/ubiproject-star/okey/core/domain/repository"
)

const (
	activeRoomKey = "user:room"   // user:room:<playerID> -> roomID
	playedKey     = "user:played" // user:played:<playerID> -> 最近一局的 roomID
	playedTTL     = 30 * 24 * time.Hour
)

// clearActiveRoomScript 只在映射仍指向 ARGV[1] 时删除。每次只操作一个 key，集群模式下不会跨槽
const clearActiveRoomScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`

// RedisActiveRoomRepository Redis 实现的玩家进行中房间映射
type RedisActiveRoomRepository struct {
	redis *database.RedisManager
}

func NewRedisActiveRoomRepository(redis *database.RedisManager) repository.ActiveRoomRepository {
	return &RedisActiveRoomRepository{
		redis: redis,
	}
}

func activeRoomKeyOf(playerID string) string {
	return activeRoomKey + ":" + playerID
}

func playedKeyOf(playerID string) string {
	return playedKey + ":" + playerID
}

func (r *RedisActiveRoomRepository) SetActiveRoom(ctx context.Context, playerID, roomID string, ttl time.Duration) error {
	if err := r.redis.Set(ctx, activeRoomKeyOf(playerID), roomID, ttl); err != nil {
		return err
	}
	return r.redis.Set(ctx, playedKeyOf(playerID), roomID, playedTTL)
}

func (r *RedisActiveRoomRepository) GetActiveRoom(ctx context.Context, playerID string) (string, error) {
	roomID, err := r.redis.Get(ctx, activeRoomKeyOf(playerID))
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrActiveRoomNotFound
	}
	return roomID, err
}

func (r *RedisActiveRoomRepository) ClearActiveRooms(ctx context.Context, roomID string, playerIDs []string) error {
	var errs []error
	for _, playerID := range playerIDs {
		if _, err := r.redis.EvalScript(ctx, "okey:clear_active_room", clearActiveRoomScript, []string{activeRoomKeyOf(playerID)}, roomID); err != nil {
			errs = append(errs, fmt.Errorf("玩家 %s: %w", playerID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *RedisActiveRoomRepository) HasPlayed(ctx context.Context, playerID string) (bool, error) {
	_, err := r.redis.Get(ctx, playedKeyOf(playerID))
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return err == nil, err
}
