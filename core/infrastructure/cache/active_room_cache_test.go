package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/core/domain/repository"
)

type memoryActiveRooms struct {
	mu    sync.Mutex
	rooms  map[string]string
	played map[string]bool
	reads  int
}

func (m *memoryActiveRooms) SetActiveRoom(_ context.Context, playerID, roomID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[playerID] = roomID
	if m.played == nil {
		m.played = map[string]bool{}
	}
	m.played[playerID] = true
	return nil
}

func (m *memoryActiveRooms) GetActiveRoom(_ context.Context, playerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	roomID, ok := m.rooms[playerID]
	if !ok {
		return "", repository.ErrActiveRoomNotFound
	}
	return roomID, nil
}

func (m *memoryActiveRooms) ClearActiveRooms(_ context.Context, roomID string, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range playerIDs {
		if m.rooms[id] == roomID {
			delete(m.rooms, id)
		}
	}
	return nil
}

func (m *memoryActiveRooms) HasPlayed(_ context.Context, playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.played[playerID], nil
}

func TestActiveRoomCacheServesHitsLocally(t *testing.T) {
	ctx := context.Background()
	backend := &memoryActiveRooms{rooms: map[string]string{}}
	c, err := NewActiveRoomCache(backend, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetActiveRoom(ctx, "p1", "r1", time.Hour))
	c.cache.Wait()

	roomID, err := c.GetActiveRoom(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "r1", roomID)
	assert.Equal(t, 0, backend.reads)
}

func TestActiveRoomCacheMissFallsBackAndClears(t *testing.T) {
	ctx := context.Background()
	backend := &memoryActiveRooms{rooms: map[string]string{"p1": "r1"}}
	c, err := NewActiveRoomCache(backend, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	roomID, err := c.GetActiveRoom(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "r1", roomID)
	assert.Equal(t, 1, backend.reads)
	c.cache.Wait()

	require.NoError(t, c.ClearActiveRooms(ctx, "r1", []string{"p1"}))
	c.cache.Wait()

	_, err = c.GetActiveRoom(ctx, "p1")
	assert.ErrorIs(t, err, repository.ErrActiveRoomNotFound)
}
