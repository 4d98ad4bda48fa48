package share

import (
	"github.com/ubiproject-star/okey/core/domain/entity"
)

// 客户端命令类型
const (
	CmdJoinQueue   = "join_queue"
	CmdDrawTile    = "draw_tile"
	CmdDiscardTile = "discard_tile"
	CmdFinishGame  = "finish_game"
	CmdHeartbeat   = "heartbeat"
)

// 节点内部事件类型
const (
	EventGameStart = "game_start_request"
	EventReconnect = "reconnect"
)

// Command 客户端能发送的全部命令，集合是封闭的
type Command interface {
	CommandType() string
	command()
}

// GameEvent 投递给房间引擎的事件，由引擎串行处理
type GameEvent interface {
	GetUserID() string
	GetEventType() string
}

// RoomCommand 发往某个房间的玩家命令
type RoomCommand interface {
	Command
	GameEvent
	GetRoomID() string
	Bind(userID string, origin Origin)
}

// Origin 命令来自哪条连接，私有回复按它路由
type Origin struct {
	ConnectionID string `json:"-"`
	ConnectorID  string `json:"-"`
}

// GameMessageEvent 由连接层填充，客户端不能自己声明身份
type GameMessageEvent struct {
	UserID string `json:"-"`
	Origin
}

func (e *GameMessageEvent) GetUserID() string {
	return e.UserID
}

func (e *GameMessageEvent) Bind(userID string, origin Origin) {
	e.UserID = userID
	e.Origin = origin
}

type JoinQueueCommand struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

func (c *JoinQueueCommand) CommandType() string { return CmdJoinQueue }
func (c *JoinQueueCommand) command()            {}

type HeartbeatCommand struct{}

func (c *HeartbeatCommand) CommandType() string { return CmdHeartbeat }
func (c *HeartbeatCommand) command()            {}

type DrawTileEvent struct {
	GameMessageEvent
	RoomID string `json:"roomId"`
	Source string `json:"source"` // center | left
}

func (e *DrawTileEvent) CommandType() string  { return CmdDrawTile }
func (e *DrawTileEvent) GetEventType() string { return CmdDrawTile }
func (e *DrawTileEvent) GetRoomID() string    { return e.RoomID }
func (e *DrawTileEvent) command()             {}

type DiscardTileEvent struct {
	GameMessageEvent
	RoomID string `json:"roomId"`
	TileID string `json:"tileId"`
}

func (e *DiscardTileEvent) CommandType() string  { return CmdDiscardTile }
func (e *DiscardTileEvent) GetEventType() string { return CmdDiscardTile }
func (e *DiscardTileEvent) GetRoomID() string    { return e.RoomID }
func (e *DiscardTileEvent) command()             {}

type FinishGameEvent struct {
	GameMessageEvent
	RoomID       string    `json:"roomId"`
	ArrangedHand []*string `json:"arrangedHand"` // null 为分隔
}

func (e *FinishGameEvent) CommandType() string  { return CmdFinishGame }
func (e *FinishGameEvent) GetEventType() string { return CmdFinishGame }
func (e *FinishGameEvent) GetRoomID() string    { return e.RoomID }
func (e *FinishGameEvent) command()             {}

// GameStartEvent 新房间的第一个事件：发牌、落库、通知玩家。Result 非空时回传结果
type GameStartEvent struct {
	Players []entity.RoomPlayer
	Result  chan error
}

func (e *GameStartEvent) GetUserID() string    { return "" }
func (e *GameStartEvent) GetEventType() string { return EventGameStart }

// ReconnectEvent 玩家换了新连接，需要重新同步房间
type ReconnectEvent struct {
	GameMessageEvent
}

func (e *ReconnectEvent) GetEventType() string { return EventReconnect }
