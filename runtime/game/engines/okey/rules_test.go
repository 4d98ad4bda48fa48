package okey

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/core/domain/entity"
)

func dealtRoom(t *testing.T) *entity.GameRoom {
	t.Helper()
	room, err := NewRoom("r1", seatedPlayers(), rand.New(rand.NewSource(11)), time.Unix(1700000000, 0))
	require.NoError(t, err)
	return room
}

// craftRoom 按给定的 0 号座位手牌和指示牌摆出一个满足守恒的房间
func craftRoom(t *testing.T, indicatorID string, seat0 []string) *entity.GameRoom {
	t.Helper()
	byID := make(map[string]entity.Tile, TileLimit)
	var order []string
	for _, tile := range NewTileSet() {
		byID[tile.ID] = tile
		order = append(order, tile.ID)
	}
	taken := map[string]bool{indicatorID: true}
	room := &entity.GameRoom{
		ID:        "crafted",
		Players:   seatedPlayers(),
		State:     entity.RoomPlaying,
		Indicator: byID[indicatorID],
	}
	joker, err := ResolveJoker(room.Indicator)
	require.NoError(t, err)
	room.Joker = joker

	for _, id := range seat0 {
		require.False(t, taken[id], id)
		taken[id] = true
		room.Hands[0] = append(room.Hands[0], byID[id])
	}
	seat := 1
	for _, id := range order {
		if taken[id] {
			continue
		}
		if seat < entity.SeatCount && len(room.Hands[seat]) == HandSize {
			seat++
		}
		if seat < entity.SeatCount {
			room.Hands[seat] = append(room.Hands[seat], byID[id])
		} else {
			room.DrawPile = append(room.DrawPile, byID[id])
		}
	}
	require.NoError(t, CheckConservation(room))
	return room
}

func strp(s string) *string { return &s }

func ids(sets ...[]string) []*string {
	var out []*string
	for i, s := range sets {
		if i > 0 {
			out = append(out, nil)
		}
		for _, id := range s {
			out = append(out, strp(id))
		}
	}
	return out
}

var winningSets = [][]string{
	{"red-7-1", "black-7-1", "blue-7-1"},
	{"red-8-1", "black-8-2", "blue-8-1", "orange-8-1"},
	{"orange-1-1", "orange-2-1", "orange-3-1", "orange-4-1"},
	{"blue-12-1", "blue-13-1", "blue-1-1"},
}

func winningHand(extra ...string) []string {
	var hand []string
	for _, s := range winningSets {
		hand = append(hand, s...)
	}
	return append(hand, extra...)
}

func TestDrawRequiresTurnAndFourteenTiles(t *testing.T) {
	room := dealtRoom(t)

	_, err := Draw(room, 0, SourceCenter)
	assert.ErrorIs(t, err, ErrAlreadyDrawn, "dealer starts with 15")

	_, err = Draw(room, 1, SourceCenter)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = Draw(room, 7, SourceCenter)
	assert.ErrorIs(t, err, ErrNotSeated)
	assert.Equal(t, KindProtocolViolation, Classify(err))
}

func TestDiscardAdvancesTurnAndDrawLeftTakesIt(t *testing.T) {
	room := dealtRoom(t)
	tileID := room.Hands[0][3].ID

	tile, err := Discard(room, 0, tileID)
	require.NoError(t, err)
	assert.Equal(t, tileID, tile.ID)
	assert.Equal(t, 1, room.TurnIndex)
	assert.Len(t, room.Hands[0], HandSize)
	assert.Equal(t, []entity.Tile{tile}, room.Discards[0])
	require.NoError(t, CheckConservation(room))

	_, err = Discard(room, 1, room.Hands[1][0].ID)
	assert.ErrorIs(t, err, ErrMustDrawFirst)

	res, err := Draw(room, 1, SourceLeft)
	require.NoError(t, err)
	assert.Equal(t, tileID, res.Tile.ID)
	assert.Empty(t, room.Discards[0])
	assert.Len(t, room.Hands[1], DealerHandSize)
	require.NoError(t, CheckConservation(room))

	_, err = Discard(room, 1, "no-such-tile")
	assert.ErrorIs(t, err, ErrTileNotInHand)

	_, err = Discard(room, 1, tileID)
	require.NoError(t, err)
	assert.Equal(t, 2, room.TurnIndex)
}

func TestDrawLeftFromEmptyPile(t *testing.T) {
	room := dealtRoom(t)
	_, err := Discard(room, 0, room.Hands[0][0].ID)
	require.NoError(t, err)
	// 正常对局中上家刚出过牌，这里人为清空上家弃牌堆
	room.Discards[0] = []entity.Tile{}
	before := room.Clone()

	_, err = Draw(room, 1, SourceLeft)
	assert.ErrorIs(t, err, ErrEmptyPile)
	assert.Equal(t, before, room)
}

func TestDrawUnknownSource(t *testing.T) {
	room := dealtRoom(t)
	_, err := Discard(room, 0, room.Hands[0][0].ID)
	require.NoError(t, err)

	_, err = Draw(room, 1, DrawSource("top"))
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestWrongTurnDiscardLeavesRoomUntouched(t *testing.T) {
	room := dealtRoom(t)
	before := room.Clone()

	_, err := Discard(room, 2, room.Hands[2][0].ID)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, KindProtocolViolation, Classify(err))
	assert.Equal(t, before, room)
}

func TestDeckExhaustion(t *testing.T) {
	room := dealtRoom(t)
	// 只留一张在中央牌堆，其余挪到 2 号座位弃牌堆，保持守恒
	n := len(room.DrawPile)
	room.Discards[2] = append(room.Discards[2], room.DrawPile[:n-1]...)
	room.DrawPile = room.DrawPile[n-1:]
	require.NoError(t, CheckConservation(room))

	_, err := Discard(room, 0, room.Hands[0][0].ID)
	require.NoError(t, err)

	res, err := Draw(room, 1, SourceCenter)
	require.NoError(t, err)
	assert.False(t, res.DeckExhausted)
	assert.Empty(t, room.DrawPile)

	_, err = Discard(room, 1, res.Tile.ID)
	require.NoError(t, err)
	hands := room.Clone().Hands

	res, err = Draw(room, 2, SourceCenter)
	require.NoError(t, err)
	assert.True(t, res.DeckExhausted)
	assert.Equal(t, entity.RoomFinished, room.State)
	assert.Equal(t, entity.EndDeckExhausted, room.EndReason)
	assert.Empty(t, room.WinnerID)
	assert.Equal(t, hands, room.Hands)
	require.NoError(t, CheckConservation(room))

	_, err = Discard(room, 2, room.Hands[2][0].ID)
	assert.ErrorIs(t, err, ErrRoomFinished)
	assert.Equal(t, KindTerminal, Classify(err))
}

func TestFinishWithFifteenTiles(t *testing.T) {
	room := craftRoom(t, "black-8-1", winningHand("red-2-1"))

	res, err := Finish(room, 0, ids(winningSets...))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Seat)
	require.NotNil(t, res.FinalDiscard)
	assert.Equal(t, "red-2-1", res.FinalDiscard.ID)
	assert.Len(t, res.Arranged, HandSize+len(winningSets)-1)

	assert.Equal(t, entity.RoomFinished, room.State)
	assert.Equal(t, entity.EndNormalFinish, room.EndReason)
	assert.Equal(t, "p1", room.WinnerID)
	assert.Len(t, room.Hands[0], HandSize)
	assert.Equal(t, "red-2-1", room.Discards[0][0].ID)
	require.NoError(t, CheckConservation(room))
}

func TestFinishWithFourteenTiles(t *testing.T) {
	room := craftRoom(t, "black-8-1", winningHand())
	res, err := Finish(room, 0, ids(winningSets...))
	require.NoError(t, err)
	assert.Nil(t, res.FinalDiscard)
	assert.Equal(t, "p1", room.WinnerID)
}

func TestInvalidFinishIsANoOp(t *testing.T) {
	room := craftRoom(t, "black-8-1", winningHand("red-2-1"))
	before := room.Clone()

	split := [][]string{winningSets[0], winningSets[1], winningSets[2], {"blue-12-1", "blue-13-1"}, {"blue-1-1"}}
	cases := map[string][]*string{
		"separator breaks a run": ids(split...),
		"duplicate tile":         ids(winningSets[0], winningSets[0], winningSets[2], winningSets[3]),
		"tile not in hand":       ids(winningSets[0], winningSets[1], winningSets[2], []string{"blue-12-2", "blue-13-1", "blue-1-1"}),
		"too few tiles":          ids(winningSets[0], winningSets[1], winningSets[2]),
	}
	for name, arranged := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Finish(room, 0, arranged)
			assert.ErrorIs(t, err, ErrInvalidFinish)
			assert.Equal(t, KindInvalidFinish, Classify(err))
			assert.Equal(t, before, room)
		})
	}

	_, err := Finish(room, 1, ids(winningSets...))
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestConservationDetectsDuplicates(t *testing.T) {
	room := dealtRoom(t)
	room.Hands[1] = append(room.Hands[1], room.Hands[0][0])
	assert.Error(t, CheckConservation(room))
}
