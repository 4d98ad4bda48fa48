package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const GameTypeOkey4p = "okey_4p"

// GameRecord 对局归档（聚合根），房间结束时写入 mongodb
type GameRecord struct {
	ID          primitive.ObjectID `bson:"_id"`
	RoomID      string             `bson:"room_id"`
	GameType    string             `bson:"game_type"`
	Players     []PlayerInfo       `bson:"players"`
	StartTime   time.Time          `bson:"start_time"`
	EndTime     time.Time          `bson:"end_time"`
	Duration    int                `bson:"duration"` // 秒
	FinalResult *GameFinalResult   `bson:"final_result"`
	Status      string             `bson:"status"` // "completed", "aborted"
	CreatedAt   time.Time          `bson:"created_at"`
}

type PlayerInfo struct {
	UserID    string `bson:"user_id"`
	SeatIndex int    `bson:"seat_index"`
	Nickname  string `bson:"nickname,omitempty"`
	IsBot     bool   `bson:"is_bot"`
}

// GameFinalResult 胜者、结束原因与亮出的手牌（流局时胜者为空）
type GameFinalResult struct {
	WinnerID     string        `bson:"winner_id,omitempty"`
	WinnerSeat   int           `bson:"winner_seat"`
	Reason       string        `bson:"reason"`
	RevealedHand []string      `bson:"revealed_hand,omitempty"` // 牌 ID，空字符串表示分隔
	Indicator    Tile          `bson:"indicator"`
	Joker        JokerIdentity `bson:"joker"`
	DrawPileLeft int           `bson:"draw_pile_left"`
}

// NewGameRecord 按房间当前座位创建归档
func NewGameRecord(room *GameRoom) *GameRecord {
	players := make([]PlayerInfo, len(room.Players))
	for i, p := range room.Players {
		players[i] = PlayerInfo{
			UserID:    p.ID,
			SeatIndex: i,
			Nickname:  p.Name,
			IsBot:     p.IsBot(),
		}
	}
	return &GameRecord{
		ID:        primitive.NewObjectID(),
		RoomID:    room.ID,
		GameType:  GameTypeOkey4p,
		Players:   players,
		StartTime: room.CreatedAt,
		Status:    "in_progress",
		CreatedAt: time.Now(),
	}
}

// CompleteGame 完成游戏（设置最终结果）
func (gr *GameRecord) CompleteGame(finalResult *GameFinalResult) {
	gr.EndTime = time.Now()
	gr.Duration = int(gr.EndTime.Sub(gr.StartTime).Seconds())
	gr.FinalResult = finalResult
	gr.Status = "completed"
}

// AbortGame 中止游戏
func (gr *GameRecord) AbortGame() {
	gr.EndTime = time.Now()
	gr.Duration = int(gr.EndTime.Sub(gr.StartTime).Seconds())
	gr.Status = "aborted"
}
