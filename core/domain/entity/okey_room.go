package entity

import "time"

// Color 牌的花色，假 okey 没有花色
type Color string

const (
	ColorRed    Color = "red"
	ColorBlack  Color = "black"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
	ColorNone   Color = ""
)

// Colors 四种花色，顺序即牌堆构造顺序
var Colors = [4]Color{ColorRed, ColorBlack, ColorBlue, ColorOrange}

// FakeJokerValue 假 okey 的牌面哨兵值
const FakeJokerValue = 0

const (
	SeatCount = 4
	// BotIDPrefix 机器人玩家 ID 前缀
	BotIDPrefix = "bot-"
)

// Tile 一张物理牌，创建后不可变，只在手牌、牌堆、弃牌堆之间移动
type Tile struct {
	ID          string `json:"id"`
	Value       int    `json:"value"`
	Color       Color  `json:"color"`
	IsFakeJoker bool   `json:"isFakeJoker,omitempty"`
}

// JokerIdentity 本局 okey（万能牌）的牌面
type JokerIdentity struct {
	Value int   `json:"value"`
	Color Color `json:"color"`
}

// Matches 判断一张真实牌是否就是本局的 okey
func (j JokerIdentity) Matches(t Tile) bool {
	return !t.IsFakeJoker && t.Value == j.Value && t.Color == j.Color
}

type RoomState string

const (
	RoomWaiting  RoomState = "waiting"
	RoomPlaying  RoomState = "playing"
	RoomFinished RoomState = "finished"
)

type EndReason string

const (
	EndNormalFinish  EndReason = "normal_finish"
	EndDeckExhausted EndReason = "deck_exhausted"
)

// RoomPlayer 座位上的玩家，ID 是稳定身份，ConnectionID 只是路由信息
type RoomPlayer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	ConnectionID string `json:"connectionId"`
	ConnectorID  string `json:"connectorId"` // 连接所在节点
}

func (p RoomPlayer) IsBot() bool {
	return len(p.ID) > len(BotIDPrefix) && p.ID[:len(BotIDPrefix)] == BotIDPrefix
}

// GameRoom 房间的完整权威状态，整体序列化后存入 redis
type GameRoom struct {
	ID           string            `json:"id"`
	Players      []RoomPlayer      `json:"players"`
	State        RoomState         `json:"state"`
	TurnIndex    int               `json:"turnIndex"`
	DrawPile     []Tile            `json:"drawPile"`
	Discards     [SeatCount][]Tile `json:"discards"`
	Hands        [SeatCount][]Tile `json:"hands"`
	Indicator    Tile              `json:"indicator"`
	Joker        JokerIdentity     `json:"joker"`
	WinnerID     string            `json:"winnerId,omitempty"`
	EndReason    EndReason         `json:"endReason,omitempty"`
	TurnDeadline time.Time         `json:"turnDeadline"`
	Version      int64             `json:"version"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// SeatOf 返回玩家的座位号，不在房间中返回 -1
func (r *GameRoom) SeatOf(playerID string) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// LeftSeat 座位 seat 的上家（摸左手牌的来源）
func LeftSeat(seat int) int {
	return (seat - 1 + SeatCount) % SeatCount
}

// NextSeat 座位 seat 的下家
func NextSeat(seat int) int {
	return (seat + 1) % SeatCount
}

// PlayerIDs 按座位顺序返回玩家 ID
func (r *GameRoom) PlayerIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// TileCount 牌堆、手牌、弃牌堆与指示牌的总数
func (r *GameRoom) TileCount() int {
	n := len(r.DrawPile) + 1
	for seat := 0; seat < SeatCount; seat++ {
		n += len(r.Hands[seat]) + len(r.Discards[seat])
	}
	return n
}

// Clone 深拷贝，所有切片都不与原房间共享底层数组
func (r *GameRoom) Clone() *GameRoom {
	c := *r
	if r.Players != nil {
		c.Players = make([]RoomPlayer, len(r.Players))
		copy(c.Players, r.Players)
	}
	c.DrawPile = cloneTiles(r.DrawPile)
	for seat := 0; seat < SeatCount; seat++ {
		c.Hands[seat] = cloneTiles(r.Hands[seat])
		c.Discards[seat] = cloneTiles(r.Discards[seat])
	}
	return &c
}

// cloneTiles 保留 nil 与空切片的区别
func cloneTiles(tiles []Tile) []Tile {
	if tiles == nil {
		return nil
	}
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	return out
}
