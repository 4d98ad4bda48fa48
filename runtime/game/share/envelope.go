package share

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownCommand = errors.New("unknown command")

// Envelope 收发两个方向共用的外层结构 {"type": ..., "data": {...}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeCommand 解析客户端消息，身份与来源由调用方随后 Bind
func DecodeCommand(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("消息格式错误: %w", err)
	}

	var cmd Command
	switch env.Type {
	case CmdJoinQueue:
		cmd = &JoinQueueCommand{}
	case CmdDrawTile:
		cmd = &DrawTileEvent{}
	case CmdDiscardTile:
		cmd = &DiscardTileEvent{}
	case CmdFinishGame:
		cmd = &FinishGameEvent{}
	case CmdHeartbeat:
		return &HeartbeatCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, cmd); err != nil {
			return nil, fmt.Errorf("%s 参数错误: %w", env.Type, err)
		}
	}
	if rc, ok := cmd.(RoomCommand); ok && rc.GetRoomID() == "" {
		return nil, fmt.Errorf("%s 缺少 roomId", env.Type)
	}
	return cmd, nil
}

// Encode 把下行事件包进信封
func Encode(ev OutboundEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("%s 序列化失败: %w", ev.EventName(), err)
	}
	return json.Marshal(&Envelope{Type: ev.EventName(), Data: data})
}
