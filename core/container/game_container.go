package container

import (
	"context"
	"sync"
	"time"

	"github.com/ubiproject-star/okey/common/config"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/infrastructure/cache"
	"github.com/ubiproject-star/okey/core/infrastructure/persistence"
	"github.com/ubiproject-star/okey/core/infrastructure/realtime"
	"github.com/ubiproject-star/okey/runtime/conn"
	"github.com/ubiproject-star/okey/runtime/game"
	"github.com/ubiproject-star/okey/runtime/game/application/service"
	"github.com/ubiproject-star/okey/runtime/game/application/service/impl"
	"github.com/ubiproject-star/okey/runtime/game/engines"
	"github.com/ubiproject-star/okey/runtime/game/engines/okey"
	"github.com/ubiproject-star/okey/runtime/march"
)

const activeRoomCacheTTL = time.Minute

// GameContainer 一个 okey 节点的全部组件：对局、匹配、长连接
type GameContainer struct {
	*BaseContainer
	GameWorker  *game.Worker
	MarchWorker *march.Worker
	ConnWorker  *conn.Worker
	GameService service.GameService

	activeRooms *cache.ActiveRoomCache
	cancel      context.CancelFunc
	closed      bool
	mu          sync.Mutex
}

func NewGameContainer(conf config.GameConfiguration) (*GameContainer, error) {
	base, err := NewBase(conf.DatabaseConf)
	if err != nil {
		return nil, err
	}
	c, err := newGameContainer(base, conf)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return c, nil
}

// newGameContainer 依赖注入顺序：仓储 -> game Worker + 引擎原型 -> 匹配 -> 长连接
func newGameContainer(base *BaseContainer, conf config.GameConfiguration) (*GameContainer, error) {
	roomStates := realtime.NewRedisRoomStateRepository(base.redis)
	activeRooms, err := cache.NewActiveRoomCache(realtime.NewRedisActiveRoomRepository(base.redis), activeRoomCacheTTL)
	if err != nil {
		return nil, err
	}

	worker := game.NewWorker(conf.ID, roomStates, activeRooms)
	if base.mongo != nil {
		worker.GameRecords = persistence.NewGameRecordRepository(base.mongo)
	}
	for engineType, engine := range createEnginePrototypes(worker) {
		if err := worker.RoomManager.SetEnginePrototype(engineType, engine); err != nil {
			activeRooms.Close()
			return nil, err
		}
	}

	marchWorker := march.NewWorker(conf.ID, worker, worker, func() time.Duration {
		return config.Okey().BotFill()
	})
	connWorker := conn.NewWorker(conf.ID, conf.ConnectorConf, conf.JwtConf.Secret, worker, marchWorker)
	worker.Local = connWorker

	ctx, cancel := context.WithCancel(context.Background())
	marchWorker.Start(ctx)

	return &GameContainer{
		BaseContainer: base,
		GameWorker:    worker,
		MarchWorker:   marchWorker,
		ConnWorker:    connWorker,
		GameService:   impl.NewGameService(worker),
		activeRooms:   activeRooms,
		cancel:        cancel,
	}, nil
}

func createEnginePrototypes(worker *game.Worker) map[engines.EngineType]engines.Engine {
	prototypes := make(map[engines.EngineType]engines.Engine)
	prototypes[engines.OKEY_4P_ENGINE] = okey.NewOkey4p(worker)
	log.Info("GameContainer 创建 Engine 原型完成，共 %d 个引擎", len(prototypes))
	return prototypes
}

// Close 幂等。先断开连接与匹配，再停房间引擎，最后关数据库
func (c *GameContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.ConnWorker.Close()
	c.MarchWorker.Close()
	c.cancel()
	c.GameWorker.Close()
	c.activeRooms.Close()

	if err := c.BaseContainer.Close(); err != nil {
		return err
	}
	log.Info("GameContainer 已关闭")
	return nil
}
