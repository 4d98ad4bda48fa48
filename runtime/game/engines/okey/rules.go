package okey

import (
	"fmt"

	"github.com/ubiproject-star/okey/core/domain/entity"
)

type DrawSource string

const (
	SourceCenter DrawSource = "center"
	SourceLeft   DrawSource = "left"
)

type DrawResult struct {
	Seat   int
	Source DrawSource
	Tile   entity.Tile
	// DeckExhausted 中央牌堆已空，房间随即结束，Tile 无效
	DeckExhausted bool
}

type FinishResult struct {
	Seat         int
	Arranged     []*entity.Tile // nil 为分隔
	FinalDiscard *entity.Tile   // 15 张时没有摆进牌型的那一张
}

func checkTurn(room *entity.GameRoom, seat int) error {
	if room.State == entity.RoomFinished {
		return ErrRoomFinished
	}
	if room.State != entity.RoomPlaying {
		return fmt.Errorf("房间未开始: %w", ErrNotYourTurn)
	}
	if seat < 0 || seat >= len(room.Players) {
		return ErrNotSeated
	}
	if seat != room.TurnIndex {
		return ErrNotYourTurn
	}
	return nil
}

// Draw 摸牌。中央牌堆为空时房间以 deck_exhausted 结束，手牌不变
func Draw(room *entity.GameRoom, seat int, source DrawSource) (*DrawResult, error) {
	if err := checkTurn(room, seat); err != nil {
		return nil, err
	}
	if len(room.Hands[seat]) >= DealerHandSize {
		return nil, ErrAlreadyDrawn
	}

	var tile entity.Tile
	switch source {
	case SourceCenter:
		n := len(room.DrawPile)
		if n == 0 {
			room.State = entity.RoomFinished
			room.EndReason = entity.EndDeckExhausted
			room.WinnerID = ""
			return &DrawResult{Seat: seat, Source: source, DeckExhausted: true}, nil
		}
		tile = room.DrawPile[n-1]
		room.DrawPile = room.DrawPile[:n-1]
	case SourceLeft:
		left := entity.LeftSeat(seat)
		n := len(room.Discards[left])
		if n == 0 {
			return nil, ErrEmptyPile
		}
		tile = room.Discards[left][n-1]
		room.Discards[left] = room.Discards[left][:n-1]
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	room.Hands[seat] = append(room.Hands[seat], tile)
	return &DrawResult{Seat: seat, Source: source, Tile: tile}, nil
}

// Discard 出牌并把回合交给下家
func Discard(room *entity.GameRoom, seat int, tileID string) (entity.Tile, error) {
	if err := checkTurn(room, seat); err != nil {
		return entity.Tile{}, err
	}
	idx := indexOfTile(room.Hands[seat], tileID)
	if idx < 0 {
		return entity.Tile{}, fmt.Errorf("%w: %s", ErrTileNotInHand, tileID)
	}
	if len(room.Hands[seat]) < DealerHandSize {
		return entity.Tile{}, ErrMustDrawFirst
	}

	tile := room.Hands[seat][idx]
	room.Hands[seat] = removeAt(room.Hands[seat], idx)
	room.Discards[seat] = append(room.Discards[seat], tile)
	room.TurnIndex = entity.NextSeat(seat)
	return tile, nil
}

// Finish 胡牌。arrangedIDs 中 nil 为分隔，牌 ID 必须全部来自玩家手牌且不重复。
// 任何不匹配都返回 ErrInvalidFinish，房间不做任何修改。
func Finish(room *entity.GameRoom, seat int, arrangedIDs []*string) (*FinishResult, error) {
	if err := checkTurn(room, seat); err != nil {
		return nil, err
	}
	hand := room.Hands[seat]
	if len(hand) != HandSize && len(hand) != DealerHandSize {
		return nil, fmt.Errorf("%w: 手牌数 %d", ErrInvalidFinish, len(hand))
	}

	used := make(map[string]struct{}, len(arrangedIDs))
	arranged := make([]*entity.Tile, 0, len(arrangedIDs))
	for _, id := range arrangedIDs {
		if id == nil {
			arranged = append(arranged, nil)
			continue
		}
		if _, dup := used[*id]; dup {
			return nil, fmt.Errorf("%w: 重复的牌 %s", ErrInvalidFinish, *id)
		}
		idx := indexOfTile(hand, *id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: 手牌中没有 %s", ErrInvalidFinish, *id)
		}
		used[*id] = struct{}{}
		t := hand[idx]
		arranged = append(arranged, &t)
	}
	if len(used) != HandSize {
		return nil, fmt.Errorf("%w: 摆出 %d 张", ErrInvalidFinish, len(used))
	}
	if !IsValidHand(arranged, room.Joker) {
		return nil, ErrInvalidFinish
	}

	result := &FinishResult{Seat: seat, Arranged: arranged}
	kept := make([]entity.Tile, 0, HandSize)
	for _, t := range hand {
		if _, ok := used[t.ID]; ok {
			kept = append(kept, t)
			continue
		}
		leftover := t
		result.FinalDiscard = &leftover
		room.Discards[seat] = append(room.Discards[seat], t)
	}
	room.Hands[seat] = kept
	room.State = entity.RoomFinished
	room.EndReason = entity.EndNormalFinish
	room.WinnerID = room.Players[seat].ID
	return result, nil
}

// CheckConservation 106 张牌一张不多一张不少，且 ID 不重复
func CheckConservation(room *entity.GameRoom) error {
	seen := make(map[string]struct{}, TileLimit)
	add := func(tiles ...entity.Tile) error {
		for _, t := range tiles {
			if _, dup := seen[t.ID]; dup {
				return fmt.Errorf("牌 %s 出现多次", t.ID)
			}
			seen[t.ID] = struct{}{}
		}
		return nil
	}
	if err := add(room.Indicator); err != nil {
		return err
	}
	if err := add(room.DrawPile...); err != nil {
		return err
	}
	for seat := 0; seat < entity.SeatCount; seat++ {
		if err := add(room.Hands[seat]...); err != nil {
			return err
		}
		if err := add(room.Discards[seat]...); err != nil {
			return err
		}
	}
	if len(seen) != TileLimit {
		return fmt.Errorf("牌数 %d, 应为 %d", len(seen), TileLimit)
	}
	return nil
}

func indexOfTile(tiles []entity.Tile, id string) int {
	for i, t := range tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// removeAt 返回新切片，不修改原底层数组
func removeAt(tiles []entity.Tile, idx int) []entity.Tile {
	out := make([]entity.Tile, 0, len(tiles)-1)
	out = append(out, tiles[:idx]...)
	return append(out, tiles[idx+1:]...)
}
