package game

import (
	"fmt"
	"sync"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/runtime/game/engines"
)

// RoomManager 本节点上的房间引擎注册表，roomID -> Engine
type RoomManager struct {
	rooms            map[string]engines.Engine
	enginePrototypes map[engines.EngineType]engines.Engine
	mu               sync.RWMutex
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:            make(map[string]engines.Engine),
		enginePrototypes: make(map[engines.EngineType]engines.Engine),
	}
}

// SetEnginePrototype 注入 Engine 原型，在 GameContainer 初始化时调用
func (rm *RoomManager) SetEnginePrototype(engineType engines.EngineType, engine engines.Engine) error {
	if engine == nil {
		return fmt.Errorf("Engine 原型不能为空")
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.enginePrototypes[engineType] = engine
	log.Info("RoomManager 注入 Engine 原型: engineType=%d", engineType)
	return nil
}

// AttachRoom 返回房间的引擎，本节点还没有时从原型克隆一个。
// 进程重启后第一次访问房间也走这里，引擎在处理事件时自行补上计时器。
func (rm *RoomManager) AttachRoom(roomID string, engineType engines.EngineType) (engines.Engine, bool, error) {
	if roomID == "" {
		return nil, false, fmt.Errorf("房间 ID 为空")
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if engine, ok := rm.rooms[roomID]; ok {
		return engine, false, nil
	}
	prototype, ok := rm.enginePrototypes[engineType]
	if !ok {
		return nil, false, fmt.Errorf("不支持的引擎类型: %d", engineType)
	}
	engine := prototype.Clone()
	if engine == nil {
		return nil, false, fmt.Errorf("克隆游戏引擎失败: engineType=%d", engineType)
	}
	if err := engine.InitializeEngine(roomID); err != nil {
		engine.Close()
		return nil, false, fmt.Errorf("初始化游戏引擎失败: %w", err)
	}
	rm.rooms[roomID] = engine
	log.Info("RoomManager 挂载房间 %s，引擎类型: %d", roomID, engineType)
	return engine, true, nil
}

func (rm *RoomManager) GetRoom(roomID string) (engines.Engine, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	engine, ok := rm.rooms[roomID]
	return engine, ok
}

// DeleteRoom 关闭引擎并移除，房间状态仍留在存储中直到过期
func (rm *RoomManager) DeleteRoom(roomID string) error {
	rm.mu.Lock()
	engine, ok := rm.rooms[roomID]
	if ok {
		delete(rm.rooms, roomID)
	}
	rm.mu.Unlock()

	if !ok {
		return fmt.Errorf("房间 %s 不存在", roomID)
	}
	engine.Close()
	log.Info("RoomManager 删除房间 %s", roomID)
	return nil
}

func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// CloseAll 进程退出时关闭所有引擎
func (rm *RoomManager) CloseAll() {
	rm.mu.Lock()
	rooms := rm.rooms
	rm.rooms = make(map[string]engines.Engine)
	rm.mu.Unlock()

	for _, engine := range rooms {
		engine.Close()
	}
}
