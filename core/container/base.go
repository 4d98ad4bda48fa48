package container

import (
	"errors"

	"github.com/ubiproject-star/okey/common/config"
	"github.com/ubiproject-star/okey/common/database"
	"github.com/ubiproject-star/okey/common/log"
)

// BaseContainer 节点共享的数据库连接。mongo 可选，未配置时不归档对局
type BaseContainer struct {
	mongo *database.MongoManager
	redis *database.RedisManager
}

func NewBase(conf config.DatabaseConf) (*BaseContainer, error) {
	redis, err := database.NewRedis(conf.RedisConf)
	if err != nil {
		return nil, err
	}
	mongo, err := database.NewMongo(conf.MongoConf)
	if err != nil {
		_ = redis.Close()
		return nil, err
	}

	if mongo == nil {
		log.Warn("未配置 mongodb, 对局结束后不归档")
	}
	log.Info("数据库服务连接成功")

	return &BaseContainer{
		mongo: mongo,
		redis: redis,
	}, nil
}

// GetMongo 未配置时为 nil
func (c *BaseContainer) GetMongo() *database.MongoManager {
	return c.mongo
}

func (c *BaseContainer) GetRedis() *database.RedisManager {
	return c.redis
}

func (c *BaseContainer) Close() error {
	var errs []error
	if err := c.mongo.Close(); err != nil {
		log.Error("mongo 关闭失败: %v", err)
		errs = append(errs, err)
	}
	if err := c.redis.Close(); err != nil {
		log.Error("redis 关闭失败: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
