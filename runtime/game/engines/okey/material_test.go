package okey

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/core/domain/entity"
)

func seatedPlayers() []entity.RoomPlayer {
	return []entity.RoomPlayer{
		{ID: "p1", Name: "Alice"},
		{ID: "bot-1", Name: "Bot 1"},
		{ID: "bot-2", Name: "Bot 2"},
		{ID: "bot-3", Name: "Bot 3"},
	}
}

func TestCreateDeckHasEveryTileOnce(t *testing.T) {
	deck := CreateDeck(rand.New(rand.NewSource(7)))
	require.Len(t, deck, TileLimit)

	ids := make(map[string]struct{}, len(deck))
	perColor := make(map[entity.Color]int)
	fakes := 0
	for _, tile := range deck {
		ids[tile.ID] = struct{}{}
		if tile.IsFakeJoker {
			fakes++
			assert.Equal(t, entity.FakeJokerValue, tile.Value)
			assert.Equal(t, entity.ColorNone, tile.Color)
			continue
		}
		assert.GreaterOrEqual(t, tile.Value, 1)
		assert.LessOrEqual(t, tile.Value, MaxTileValue)
		perColor[tile.Color]++
	}
	assert.Len(t, ids, TileLimit)
	assert.Equal(t, FakeJokerCount, fakes)
	for _, c := range entity.Colors {
		assert.Equal(t, MaxTileValue*CopiesPerTile, perColor[c], "color %s", c)
	}
}

func TestDistributeSizesAndConservation(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		deal, err := Distribute(CreateDeck(rng), rng)
		require.NoError(t, err)

		assert.Len(t, deal.Hands[0], DealerHandSize)
		for seat := 1; seat < entity.SeatCount; seat++ {
			assert.Len(t, deal.Hands[seat], HandSize)
		}
		assert.Len(t, deal.DrawPile, DrawPileSize)
		assert.False(t, deal.Indicator.IsFakeJoker, "seed %d", seed)
		assert.Equal(t, TileLimit, DealtTileCount(deal))
	}
}

func TestDistributeDealsFromTheEnd(t *testing.T) {
	deck := NewTileSet()
	deal, err := Distribute(deck, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, deck[len(deck)-1].ID, deal.Hands[0][0].ID)
	assert.Equal(t, deck[len(deck)-DealerHandSize-1].ID, deal.Hands[1][0].ID)
}

func TestDistributeRejectsShortDeck(t *testing.T) {
	_, err := Distribute(NewTileSet()[:100], rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestResolveJoker(t *testing.T) {
	joker, err := ResolveJoker(entity.Tile{ID: "red-5-1", Value: 5, Color: entity.ColorRed})
	require.NoError(t, err)
	assert.Equal(t, entity.JokerIdentity{Value: 6, Color: entity.ColorRed}, joker)

	joker, err = ResolveJoker(entity.Tile{ID: "blue-13-2", Value: 13, Color: entity.ColorBlue})
	require.NoError(t, err)
	assert.Equal(t, entity.JokerIdentity{Value: 1, Color: entity.ColorBlue}, joker)

	for _, tile := range NewTileSet() {
		if tile.IsFakeJoker {
			_, err := ResolveJoker(tile)
			assert.ErrorIs(t, err, ErrFakeIndicator)
			continue
		}
		joker, err := ResolveJoker(tile)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, joker.Value, 1)
		assert.LessOrEqual(t, joker.Value, MaxTileValue)
		assert.Equal(t, tile.Color, joker.Color)
	}
}

func TestNewRoom(t *testing.T) {
	now := time.Unix(1700000000, 0)
	room, err := NewRoom("r1", seatedPlayers(), rand.New(rand.NewSource(3)), now)
	require.NoError(t, err)

	assert.Equal(t, entity.RoomPlaying, room.State)
	assert.Equal(t, 0, room.TurnIndex)
	assert.Equal(t, now, room.CreatedAt)
	assert.NoError(t, CheckConservation(room))

	joker, err := ResolveJoker(room.Indicator)
	require.NoError(t, err)
	assert.Equal(t, joker, room.Joker)
	for seat := 0; seat < entity.SeatCount; seat++ {
		assert.NotNil(t, room.Discards[seat])
		assert.Empty(t, room.Discards[seat])
	}
}

func TestNewRoomRejectsBadSeating(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	_, err := NewRoom("r1", seatedPlayers()[:3], rng, time.Now())
	assert.Error(t, err)

	dup := seatedPlayers()
	dup[2].ID = dup[1].ID
	_, err = NewRoom("r1", dup, rng, time.Now())
	assert.Error(t, err)
}
