package okey

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ubiproject-star/okey/core/domain/entity"
)

const (
	MaxTileValue   = 13
	CopiesPerTile  = 2
	FakeJokerCount = 2
	TileLimit      = len(entity.Colors)*MaxTileValue*CopiesPerTile + FakeJokerCount // 106

	DealerHandSize = 15 // 庄家（0 号座位）多拿一张，直接进入出牌
	HandSize       = 14
	DrawPileSize   = TileLimit - DealerHandSize - HandSize*(entity.SeatCount-1) - 1 // 48
)

var ErrFakeIndicator = errors.New("indicator is a fake joker")

// Deal 一局的初始牌局
type Deal struct {
	Hands     [entity.SeatCount][]entity.Tile
	DrawPile  []entity.Tile
	Indicator entity.Tile
}

// NewRand 每个房间一个随机源，*rand.Rand 不是并发安全的
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func TileID(color entity.Color, value, copyIndex int) string {
	return fmt.Sprintf("%s-%d-%d", color, value, copyIndex)
}

// NewTileSet 按固定顺序生成全部 106 张牌（未洗）
func NewTileSet() []entity.Tile {
	tiles := make([]entity.Tile, 0, TileLimit)
	for _, color := range entity.Colors {
		for value := 1; value <= MaxTileValue; value++ {
			for c := 1; c <= CopiesPerTile; c++ {
				tiles = append(tiles, entity.Tile{ID: TileID(color, value, c), Value: value, Color: color})
			}
		}
	}
	for c := 1; c <= FakeJokerCount; c++ {
		tiles = append(tiles, entity.Tile{
			ID:          fmt.Sprintf("fake-%d", c),
			Value:       entity.FakeJokerValue,
			Color:       entity.ColorNone,
			IsFakeJoker: true,
		})
	}
	return tiles
}

// CreateDeck 洗好的整副牌
func CreateDeck(rng *rand.Rand) []entity.Tile {
	deck := NewTileSet()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Distribute 从牌堆末尾依次发牌，0 号座位 15 张，其余 14 张；再从剩余牌中随机翻出指示牌。
// 指示牌只在数字牌中选，假 okey 不能做指示牌。
func Distribute(deck []entity.Tile, rng *rand.Rand) (*Deal, error) {
	if len(deck) != TileLimit {
		return nil, fmt.Errorf("牌数错误: %d", len(deck))
	}
	rest := append([]entity.Tile(nil), deck...)
	deal := &Deal{}
	for seat := 0; seat < entity.SeatCount; seat++ {
		n := HandSize
		if seat == 0 {
			n = DealerHandSize
		}
		hand := make([]entity.Tile, 0, DealerHandSize)
		for i := 0; i < n; i++ {
			last := len(rest) - 1
			hand = append(hand, rest[last])
			rest = rest[:last]
		}
		deal.Hands[seat] = hand
	}

	candidates := make([]int, 0, len(rest))
	for i, t := range rest {
		if !t.IsFakeJoker {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("剩余牌中没有可做指示牌的数字牌")
	}
	pick := candidates[rng.Intn(len(candidates))]
	deal.Indicator = rest[pick]
	deal.DrawPile = append(rest[:pick:pick], rest[pick+1:]...)

	if got := DealtTileCount(deal); got != TileLimit {
		return nil, fmt.Errorf("发牌后牌数不守恒: %d", got)
	}
	return deal, nil
}

func DealtTileCount(d *Deal) int {
	n := len(d.DrawPile) + 1
	for _, h := range d.Hands {
		n += len(h)
	}
	return n
}

// ResolveJoker 指示牌同花色、点数加一（13 之后是 1）即为本局 okey
func ResolveJoker(indicator entity.Tile) (entity.JokerIdentity, error) {
	if indicator.IsFakeJoker {
		return entity.JokerIdentity{}, ErrFakeIndicator
	}
	if indicator.Value < 1 || indicator.Value > MaxTileValue {
		return entity.JokerIdentity{}, fmt.Errorf("指示牌点数非法: %d", indicator.Value)
	}
	return entity.JokerIdentity{
		Value: indicator.Value%MaxTileValue + 1,
		Color: indicator.Color,
	}, nil
}

// NewRoom 发牌并生成一个进行中的房间，0 号座位先手
func NewRoom(roomID string, players []entity.RoomPlayer, rng *rand.Rand, now time.Time) (*entity.GameRoom, error) {
	if len(players) != entity.SeatCount {
		return nil, fmt.Errorf("房间需要 %d 名玩家, 实际 %d", entity.SeatCount, len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p.ID == "" {
			return nil, fmt.Errorf("玩家 ID 为空")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("玩家重复入座: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	deal, err := Distribute(CreateDeck(rng), rng)
	if err != nil {
		return nil, err
	}
	joker, err := ResolveJoker(deal.Indicator)
	if err != nil {
		return nil, err
	}
	var discards [entity.SeatCount][]entity.Tile
	for seat := range discards {
		discards[seat] = []entity.Tile{}
	}
	return &entity.GameRoom{
		ID:        roomID,
		Players:   append([]entity.RoomPlayer(nil), players...),
		State:     entity.RoomPlaying,
		TurnIndex: 0,
		DrawPile:  deal.DrawPile,
		Discards:  discards,
		Hands:     deal.Hands,
		Indicator: deal.Indicator,
		Joker:     joker,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
