package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ubiproject-star/okey/common/config"
)

// RedisManager 单机与集群两种客户端的统一入口
type RedisManager struct {
	Cli        *redis.Client
	ClusterCli *redis.ClusterClient
	scriptSHAs map[string]string
	mu         sync.RWMutex
}

func NewRedis(redisConf config.RedisConf) (*RedisManager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var m *RedisManager
	if len(redisConf.ClusterAddrs) > 0 {
		m = &RedisManager{
			ClusterCli: redis.NewClusterClient(&redis.ClusterOptions{
				Addrs:        redisConf.ClusterAddrs,
				Password:     redisConf.Password,
				PoolSize:     redisConf.PoolSize,
				MinIdleConns: redisConf.MinIdleConns,
			}),
			scriptSHAs: make(map[string]string),
		}
	} else {
		addr := redisConf.Addr
		if addr == "" && redisConf.Host != "" && redisConf.Port > 0 {
			addr = fmt.Sprintf("%s:%d", redisConf.Host, redisConf.Port)
		}
		if addr == "" {
			return nil, fmt.Errorf("redis 配置出错: 缺少地址")
		}
		m = NewRedisWithClient(redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     redisConf.Password, // 没有密码时为空字符串
			PoolSize:     redisConf.PoolSize,
			MinIdleConns: redisConf.MinIdleConns,
		}))
	}

	cli, _ := m.GetClient()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("redis 连接错误: %w", err)
	}
	return m, nil
}

// NewRedisWithClient 包装已有的单机客户端
func NewRedisWithClient(cli *redis.Client) *RedisManager {
	return &RedisManager{
		Cli:        cli,
		scriptSHAs: make(map[string]string),
	}
}

func (r *RedisManager) GetClient() (redis.Cmdable, error) {
	if r.Cli != nil {
		return r.Cli, nil
	}
	if r.ClusterCli != nil {
		return r.ClusterCli, nil
	}
	return nil, fmt.Errorf("redis 客户端未初始化")
}

func (r *RedisManager) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	cli, err := r.GetClient()
	if err != nil {
		return err
	}
	return cli.Set(ctx, key, value, expiration).Err()
}

// Get 读取字符串，key 不存在时返回 redis.Nil
func (r *RedisManager) Get(ctx context.Context, key string) (string, error) {
	cli, err := r.GetClient()
	if err != nil {
		return "", err
	}
	return cli.Get(ctx, key).Result()
}

// SetNX key 不存在时写入，返回是否写入成功
func (r *RedisManager) SetNX(ctx context.Context, key, value string, expiration time.Duration) (bool, error) {
	cli, err := r.GetClient()
	if err != nil {
		return false, err
	}
	return cli.SetNX(ctx, key, value, expiration).Result()
}

func (r *RedisManager) Del(ctx context.Context, keys ...string) error {
	cli, err := r.GetClient()
	if err != nil {
		return err
	}
	return cli.Del(ctx, keys...).Err()
}

func (r *RedisManager) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	cli, err := r.GetClient()
	if err != nil {
		return false, err
	}
	return cli.Expire(ctx, key, expiration).Result()
}

// EvalScript 执行 lua 脚本，scriptName 非空时缓存 SHA 并优先走 EVALSHA
func (r *RedisManager) EvalScript(ctx context.Context, scriptName, script string, keys []string, args ...any) (any, error) {
	cli, err := r.GetClient()
	if err != nil {
		return nil, err
	}
	if scriptName == "" {
		return cli.Eval(ctx, script, keys, args...).Result()
	}

	r.mu.RLock()
	sha, exists := r.scriptSHAs[scriptName]
	r.mu.RUnlock()

	if exists {
		result, err := cli.EvalSha(ctx, sha, keys, args...).Result()
		if err == nil || !strings.HasPrefix(err.Error(), "NOSCRIPT") {
			return result, err
		}
		// SHA 失效（redis 重启或 SCRIPT FLUSH），重新加载
	}

	sha, err = cli.ScriptLoad(ctx, script).Result()
	if err != nil {
		return nil, fmt.Errorf("加载脚本失败: %w", err)
	}
	r.mu.Lock()
	r.scriptSHAs[scriptName] = sha
	r.mu.Unlock()
	return cli.EvalSha(ctx, sha, keys, args...).Result()
}

func (r *RedisManager) Close() error {
	if r.Cli != nil {
		if err := r.Cli.Close(); err != nil {
			return fmt.Errorf("redis 关闭出错: %w", err)
		}
	}
	if r.ClusterCli != nil {
		if err := r.ClusterCli.Close(); err != nil {
			return fmt.Errorf("redisCluster 关闭出错: %w", err)
		}
	}
	return nil
}
