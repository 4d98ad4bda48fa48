package okey

import (
	"errors"

	"github.com/ubiproject-star/okey/core/domain/entity"
)

// AutoMove 托管一步的结果
type AutoMove struct {
	Seat    int
	Drawn   *DrawResult  // 已经摸过牌时为空
	Discard *entity.Tile // 牌堆摸空导致结束时为空
}

// PlayAutoMove 替当前回合玩家走一步：先摸上家的牌并原样打出；
// 上家没有牌时摸中央牌堆并打出摸到的牌；已经是 15 张时直接打出最后一张。
// 人类玩家超时与机器人回合都走这里。
func PlayAutoMove(room *entity.GameRoom) (*AutoMove, error) {
	seat := room.TurnIndex
	move := &AutoMove{Seat: seat}

	var discardID string
	if len(room.Hands[seat]) >= DealerHandSize {
		hand := room.Hands[seat]
		discardID = hand[len(hand)-1].ID
	} else {
		res, err := Draw(room, seat, SourceLeft)
		if errors.Is(err, ErrEmptyPile) {
			res, err = Draw(room, seat, SourceCenter)
		}
		if err != nil {
			return nil, err
		}
		move.Drawn = res
		if res.DeckExhausted {
			return move, nil
		}
		discardID = res.Tile.ID
	}

	tile, err := Discard(room, seat, discardID)
	if err != nil {
		return nil, err
	}
	move.Discard = &tile
	return move, nil
}
