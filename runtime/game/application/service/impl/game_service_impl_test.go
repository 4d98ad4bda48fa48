package impl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/runtime/game/application/service"
)

type fakeCreator struct {
	players []entity.RoomPlayer
	err     error
}

func (f *fakeCreator) CreateRoom(_ context.Context, players []entity.RoomPlayer) (string, error) {
	f.players = players
	if f.err != nil {
		return "", f.err
	}
	return "room-1", nil
}

func fourSeats() []service.SeatReq {
	return []service.SeatReq{
		{PlayerID: "p1", Name: "Ali", ConnectionID: "c1", ConnectorID: "node-1"},
		{PlayerID: "p2"},
		{PlayerID: "bot-a", Name: "Bot 1"},
		{PlayerID: "bot-b", Name: "Bot 2", Score: 80},
	}
}

func TestCreateRoomSeatsInOrder(t *testing.T) {
	creator := &fakeCreator{}
	svc := NewGameService(creator)

	resp, err := svc.CreateRoom(context.Background(), &service.CreateRoomReq{Players: fourSeats()})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "room-1", resp.RoomID)

	require.Len(t, creator.players, entity.SeatCount)
	assert.Equal(t, "p1", creator.players[0].ID)
	assert.Equal(t, "c1", creator.players[0].ConnectionID)
	assert.Equal(t, "p2", creator.players[1].Name, "缺省名字用玩家 ID")
	assert.Equal(t, 80, creator.players[3].Score)
}

func TestCreateRoomRejectsBadSeats(t *testing.T) {
	cases := map[string][]service.SeatReq{
		"three seats": fourSeats()[:3],
		"missing id":  append(fourSeats()[:3], service.SeatReq{Name: "x"}),
		"duplicate":   append(fourSeats()[:3], service.SeatReq{PlayerID: "p1"}),
	}
	for name, seats := range cases {
		t.Run(name, func(t *testing.T) {
			creator := &fakeCreator{}
			resp, err := NewGameService(creator).CreateRoom(context.Background(), &service.CreateRoomReq{Players: seats})
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
			assert.Nil(t, creator.players)
		})
	}

	resp, err := NewGameService(&fakeCreator{}).CreateRoom(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestCreateRoomReportsEngineFailure(t *testing.T) {
	creator := &fakeCreator{err: errors.New("redis down")}
	resp, err := NewGameService(creator).CreateRoom(context.Background(), &service.CreateRoomReq{Players: fourSeats()})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "redis down")
}
