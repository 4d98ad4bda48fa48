package okey

import (
	"math"
	"time"

	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/runtime/game/share"
)

// 通知、广播：
//	私有：开局视图、摸到的牌、出牌后的手牌、错误
//	公开：对手动作（不含牌面）、出牌与弃牌堆、超时提醒、结算

func seatTarget(room *entity.GameRoom, seat int) []entity.RoomPlayer {
	return []entity.RoomPlayer{room.Players[seat]}
}

func othersOf(room *entity.GameRoom, seat int) []entity.RoomPlayer {
	others := make([]entity.RoomPlayer, 0, len(room.Players)-1)
	for i, p := range room.Players {
		if i != seat {
			others = append(others, p)
		}
	}
	return others
}

func gameStartView(room *entity.GameRoom, seat int) *share.GameStart {
	return &share.GameStart{
		RoomID:        room.ID,
		SeatIndex:     seat,
		Hand:          append([]entity.Tile{}, room.Hands[seat]...),
		Indicator:     room.Indicator,
		JokerIdentity: room.Joker,
		Players:       share.NewPlayerViews(room.Players),
		Turn:          room.Players[room.TurnIndex].ID,
		TurnIndex:     room.TurnIndex,
		DrawPileLeft:  len(room.DrawPile),
	}
}

// pushGameStart 每个真人玩家各自收到自己的手牌
func (eg *Okey4p) pushGameStart(room *entity.GameRoom) {
	for seat, p := range room.Players {
		if p.IsBot() {
			continue
		}
		eg.Worker.Push(seatTarget(room, seat), gameStartView(room, seat))
	}
}

func (eg *Okey4p) pushResync(room *entity.GameRoom, seat int, origin share.Origin) {
	eg.Worker.PushTo(origin, gameStartView(room, seat))
	eg.Worker.PushTo(origin, &share.GameRejoined{
		DiscardPiles: share.DiscardPiles(room),
		Turn:         room.Players[room.TurnIndex].ID,
		TurnIndex:    room.TurnIndex,
	})
}

func (eg *Okey4p) pushDraw(room *entity.GameRoom, res *DrawResult) {
	eg.Worker.Push(seatTarget(room, res.Seat), &share.TileDrawn{Tile: res.Tile})
	eg.Worker.Push(othersOf(room, res.Seat), &share.OpponentAction{
		Action:    "draw",
		SeatIndex: res.Seat,
		Source:    string(res.Source),
	})
}

func (eg *Okey4p) pushDiscard(room *entity.GameRoom, seat int, tile entity.Tile) {
	eg.Worker.Push(room.Players, &share.TileDiscarded{
		SeatIndex:    seat,
		PlayerID:     room.Players[seat].ID,
		Tile:         tile,
		NewTurn:      room.Players[room.TurnIndex].ID,
		NewTurnIndex: room.TurnIndex,
		DiscardPiles: share.DiscardPiles(room),
	})
	eg.Worker.Push(seatTarget(room, seat), &share.MyHandUpdated{Hand: append([]entity.Tile{}, room.Hands[seat]...)})
}

func (eg *Okey4p) pushWarning(room *entity.GameRoom, now time.Time) {
	left := int(math.Ceil(room.TurnDeadline.Sub(now).Seconds()))
	if left < 0 {
		left = 0
	}
	eg.Worker.Push(room.Players, &share.TurnTimeoutWarning{SeatIndex: room.TurnIndex, SecondsLeft: left})
}

func (eg *Okey4p) pushGameOver(room *entity.GameRoom, revealed []*entity.Tile) {
	over := &share.GameOver{
		WinnerID:     room.WinnerID,
		Reason:       string(room.EndReason),
		RevealedHand: revealed,
	}
	if seat := room.SeatOf(room.WinnerID); seat >= 0 {
		over.WinnerName = room.Players[seat].Name
	}
	eg.Worker.Push(room.Players, over)
}

func (eg *Okey4p) pushError(origin share.Origin, err error) {
	eg.Worker.PushTo(origin, &share.ErrorEvent{Message: err.Error(), Kind: Classify(err).String()})
}
