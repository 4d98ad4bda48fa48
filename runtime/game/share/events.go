package share

import (
	"github.com/ubiproject-star/okey/core/domain/entity"
)

// 下行事件类型
const (
	PushGameStart      = "game_start"
	PushTileDrawn      = "tile_drawn"
	PushOpponentAction = "opponent_action"
	PushTileDiscarded  = "tile_discarded"
	PushMyHandUpdated  = "my_hand_updated"
	PushTurnWarning    = "turn_timeout_warning"
	PushGameOver       = "game_over"
	PushGameRejoined   = "game_rejoined"
	PushReconnectFail  = "reconnect_failed"
	PushError          = "error"
	PushQueueJoined    = "queue_joined"
)

// OutboundEvent 推送给客户端的事件
type OutboundEvent interface {
	EventName() string
}

// PlayerView 座位的公开信息
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	SeatIndex int    `json:"seatIndex"`
	IsBot     bool   `json:"isBot"`
}

func NewPlayerViews(players []entity.RoomPlayer) []PlayerView {
	views := make([]PlayerView, len(players))
	for i, p := range players {
		views[i] = PlayerView{ID: p.ID, Name: p.Name, Score: p.Score, SeatIndex: i, IsBot: p.IsBot()}
	}
	return views
}

// GameStart 开局（或重连时）的完整私有视图
type GameStart struct {
	RoomID        string               `json:"roomId"`
	SeatIndex     int                  `json:"seatIndex"`
	Hand          []entity.Tile        `json:"hand"`
	Indicator     entity.Tile          `json:"indicator"`
	JokerIdentity entity.JokerIdentity `json:"jokerIdentity"`
	Players       []PlayerView         `json:"players"`
	Turn          string               `json:"turn"` // 当前回合玩家 ID
	TurnIndex     int                  `json:"turnIndex"`
	DrawPileLeft  int                  `json:"drawPileLeft"`
}

func (e *GameStart) EventName() string { return PushGameStart }

// TileDrawn 只发给摸牌者
type TileDrawn struct {
	Tile entity.Tile `json:"tile"`
}

func (e *TileDrawn) EventName() string { return PushTileDrawn }

// OpponentAction 公开动作，不含牌面
type OpponentAction struct {
	Action    string `json:"action"`
	SeatIndex int    `json:"seatIndex"`
	Source    string `json:"source,omitempty"`
}

func (e *OpponentAction) EventName() string { return PushOpponentAction }

type TileDiscarded struct {
	SeatIndex    int             `json:"seatIndex"`
	PlayerID     string          `json:"playerId"`
	Tile         entity.Tile     `json:"tile"`
	NewTurn      string          `json:"newTurn"`
	NewTurnIndex int             `json:"newTurnIndex"`
	DiscardPiles [][]entity.Tile `json:"discardPiles"`
}

func (e *TileDiscarded) EventName() string { return PushTileDiscarded }

type MyHandUpdated struct {
	Hand []entity.Tile `json:"hand"`
}

func (e *MyHandUpdated) EventName() string { return PushMyHandUpdated }

type TurnTimeoutWarning struct {
	SeatIndex   int `json:"seatIndex"`
	SecondsLeft int `json:"secondsLeft"`
}

func (e *TurnTimeoutWarning) EventName() string { return PushTurnWarning }

type GameOver struct {
	WinnerID     string         `json:"winnerId"`
	WinnerName   string         `json:"winnerName"`
	Reason       string         `json:"reason"`
	RevealedHand []*entity.Tile `json:"revealedHand"` // null 为分隔
}

func (e *GameOver) EventName() string { return PushGameOver }

// GameRejoined 重连时 GameStart 之外的棋盘状态
type GameRejoined struct {
	DiscardPiles [][]entity.Tile `json:"discardPiles"`
	Turn         string          `json:"turn"`
	TurnIndex    int             `json:"turnIndex"`
}

func (e *GameRejoined) EventName() string { return PushGameRejoined }

type ReconnectFailed struct {
	Message string `json:"message,omitempty"`
}

func (e *ReconnectFailed) EventName() string { return PushReconnectFail }

type ErrorEvent struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func (e *ErrorEvent) EventName() string { return PushError }

// QueueJoined 排队确认
type QueueJoined struct {
	Waiting int `json:"waiting"`
}

func (e *QueueJoined) EventName() string { return PushQueueJoined }

// DiscardPiles 按座位复制一份弃牌堆
func DiscardPiles(room *entity.GameRoom) [][]entity.Tile {
	piles := make([][]entity.Tile, entity.SeatCount)
	for seat := 0; seat < entity.SeatCount; seat++ {
		piles[seat] = append([]entity.Tile{}, room.Discards[seat]...)
	}
	return piles
}
