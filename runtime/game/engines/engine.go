package engines

import (
	"github.com/ubiproject-star/okey/runtime/game/share"
)

type EngineType int32

const (
	OKEY_4P_ENGINE EngineType = iota // 四人 okey 游戏引擎
)

// Engine 使用原型模式，每个房间一个引擎实例。
// 房间的权威状态在外部存储中，引擎只持有房间 ID、事件队列和本进程的计时器。
type Engine interface {
	// InitializeEngine 绑定房间并启动事件循环
	InitializeEngine(roomID string) error

	// NotifyEvent 通知游戏事件（入队，由引擎内部串行处理）
	NotifyEvent(event share.GameEvent)

	// Clone 克隆引擎实例（用于原型模式）
	Clone() Engine

	// Terminate 触发销毁房间（异步请求）
	Terminate()

	// Close 释放引擎内部资源
	Close()
}
