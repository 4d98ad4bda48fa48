package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ubiproject-star/okey/common/cache"
	"github.com/ubiproject-star/okey/core/domain/repository"
)

// ActiveRoomCache 在 redis 映射前加一层进程内缓存，重连高峰时减少 redis 读
// 只缓存命中结果，未命中总是回源
type ActiveRoomCache struct {
	cache   *cache.GeneralCache
	backend repository.ActiveRoomRepository
	key     string
}

func NewActiveRoomCache(backend repository.ActiveRoomRepository, ttl time.Duration) (*ActiveRoomCache, error) {
	generalCache, err := cache.NewGeneralCache(1<<20, ttl)
	if err != nil {
		return nil, fmt.Errorf("创建进行中房间缓存失败: %w", err)
	}
	return &ActiveRoomCache{cache: generalCache, backend: backend, key: "user:room"}, nil
}

func (c *ActiveRoomCache) cacheKey(playerID string) string {
	return c.key + ":" + playerID
}

func (c *ActiveRoomCache) SetActiveRoom(ctx context.Context, playerID, roomID string, ttl time.Duration) error {
	if err := c.backend.SetActiveRoom(ctx, playerID, roomID, ttl); err != nil {
		return err
	}
	c.cache.Set(c.cacheKey(playerID), roomID)
	return nil
}

func (c *ActiveRoomCache) GetActiveRoom(ctx context.Context, playerID string) (string, error) {
	if roomID, ok := c.cache.GetString(c.cacheKey(playerID)); ok {
		return roomID, nil
	}
	roomID, err := c.backend.GetActiveRoom(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrActiveRoomNotFound) {
			return "", err
		}
		return "", fmt.Errorf("查询玩家 %s 进行中房间失败: %w", playerID, err)
	}
	c.cache.Set(c.cacheKey(playerID), roomID)
	return roomID, nil
}

func (c *ActiveRoomCache) ClearActiveRooms(ctx context.Context, roomID string, playerIDs []string) error {
	for _, playerID := range playerIDs {
		if cached, ok := c.cache.GetString(c.cacheKey(playerID)); ok && cached == roomID {
			c.cache.Delete(c.cacheKey(playerID))
		}
	}
	return c.backend.ClearActiveRooms(ctx, roomID, playerIDs)
}

func (c *ActiveRoomCache) HasPlayed(ctx context.Context, playerID string) (bool, error) {
	return c.backend.HasPlayed(ctx, playerID)
}

func (c *ActiveRoomCache) Close() {
	c.cache.Close()
}
