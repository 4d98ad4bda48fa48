package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// GameNodeConfig 当前 game 节点的配置，Load 之后只读
var GameNodeConfig GameConfiguration

// okeyConf 对局节奏参数，支持配置文件热更新
var okeyConf atomic.Pointer[OkeyConf]

type BaseConfig struct {
	ID         string `mapstructure:"id"`
	MetricPort int    `mapstructure:"metricPort"`
}

type GameConfiguration struct {
	BaseConfig    `mapstructure:",squash"`
	DatabaseConf  DatabaseConf  `mapstructure:"database"`
	JwtConf       JwtConf       `mapstructure:"jwt"`
	LogConf       LogConf       `mapstructure:"log"`
	NatsConfig    NatsConfig    `mapstructure:"nats"`
	GrpcConf      GrpcConf      `mapstructure:"grpc"`
	HttpConf      HttpConf      `mapstructure:"http"`
	ConnectorConf ConnectorConf `mapstructure:"connector"`
	OkeyConf      OkeyConf      `mapstructure:"okey"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
}

type GrpcConf struct {
	Addr string `mapstructure:"addr"`
}

type HttpConf struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type JwtConf struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // 单位：小时
}

type DatabaseConf struct {
	MongoConf MongoConf `mapstructure:"mongo"`
	RedisConf RedisConf `mapstructure:"redis"`
}

type MongoConf struct {
	Url         string `mapstructure:"url"` // 为空时不归档对局
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr         string   `mapstructure:"addr"`
	ClusterAddrs []string `mapstructure:"clusterAddrs"`
	Password     string   `mapstructure:"password"`
	PoolSize     int      `mapstructure:"poolSize"`
	MinIdleConns int      `mapstructure:"minIdleConns"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
}

type NatsConfig struct {
	URL string `json:"url" mapstructure:"url"` // 为空时只做本节点推送
}

// ConnectorConf 长连接网关参数
type ConnectorConf struct {
	MaxConnections int `mapstructure:"maxConnections"`
	RateLimit      int `mapstructure:"rateLimit"` // 每秒允许的升级请求数
	RateBurst      int `mapstructure:"rateBurst"`
	ReadLimit      int `mapstructure:"readLimit"`   // 单条消息最大字节数
	PongWait       int `mapstructure:"pongWait"`    // 单位：秒
	WriteWait      int `mapstructure:"writeWait"`   // 单位：秒
	SendBuffer     int `mapstructure:"sendBuffer"`  // 每个连接的写缓冲条数
	CommandRate    int `mapstructure:"commandRate"` // 每个连接每秒允许的指令数
}

// OkeyConf 对局节奏参数
type OkeyConf struct {
	HumanTurnSeconds     int `mapstructure:"humanTurnSeconds"`
	WarningSeconds       int `mapstructure:"warningSeconds"`
	BotTurnMillis        int `mapstructure:"botTurnMillis"`
	RoomTTLSeconds       int `mapstructure:"roomTTLSeconds"`
	ActiveRoomTTLSeconds int `mapstructure:"activeRoomTTLSeconds"`
	BotFillMillis        int `mapstructure:"botFillMillis"`
	InitialScore         int `mapstructure:"initialScore"`
}

func (c OkeyConf) HumanTurn() time.Duration {
	return time.Duration(c.HumanTurnSeconds) * time.Second
}

func (c OkeyConf) WarningLead() time.Duration {
	return time.Duration(c.WarningSeconds) * time.Second
}

func (c OkeyConf) BotTurn() time.Duration {
	return time.Duration(c.BotTurnMillis) * time.Millisecond
}

func (c OkeyConf) RoomTTL() time.Duration {
	return time.Duration(c.RoomTTLSeconds) * time.Second
}

func (c OkeyConf) ActiveRoomTTL() time.Duration {
	return time.Duration(c.ActiveRoomTTLSeconds) * time.Second
}

func (c OkeyConf) BotFill() time.Duration {
	return time.Duration(c.BotFillMillis) * time.Millisecond
}

// DefaultOkeyConf 默认对局节奏：人类 30 秒，剩余 10 秒预警，机器人 1.5 秒
func DefaultOkeyConf() OkeyConf {
	return OkeyConf{
		HumanTurnSeconds:     30,
		WarningSeconds:       10,
		BotTurnMillis:        1500,
		RoomTTLSeconds:       7200,
		ActiveRoomTTLSeconds: 3600,
		BotFillMillis:        0,
		InitialScore:         100,
	}
}

// Okey 返回当前生效的对局节奏参数
func Okey() OkeyConf {
	if c := okeyConf.Load(); c != nil {
		return *c
	}
	return DefaultOkeyConf()
}

func setDefaults(v *viper.Viper) {
	d := DefaultOkeyConf()
	v.SetDefault("metricPort", 5855)
	v.SetDefault("log.level", "info")
	v.SetDefault("grpc.addr", "0.0.0.0:9301")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.mode", "release")
	v.SetDefault("jwt.expire", 24*7)
	v.SetDefault("database.redis.poolSize", 32)
	v.SetDefault("database.mongo.db", "okey")
	v.SetDefault("connector.maxConnections", 100000)
	v.SetDefault("connector.rateLimit", 200)
	v.SetDefault("connector.rateBurst", 2)
	v.SetDefault("connector.readLimit", 4096)
	v.SetDefault("connector.pongWait", 60)
	v.SetDefault("connector.writeWait", 10)
	v.SetDefault("connector.sendBuffer", 64)
	v.SetDefault("connector.commandRate", 20)
	v.SetDefault("okey.humanTurnSeconds", d.HumanTurnSeconds)
	v.SetDefault("okey.warningSeconds", d.WarningSeconds)
	v.SetDefault("okey.botTurnMillis", d.BotTurnMillis)
	v.SetDefault("okey.roomTTLSeconds", d.RoomTTLSeconds)
	v.SetDefault("okey.activeRoomTTLSeconds", d.ActiveRoomTTLSeconds)
	v.SetDefault("okey.botFillMillis", d.BotFillMillis)
	v.SetDefault("okey.initialScore", d.InitialScore)
}

// Load 读取配置文件并监听变更，identifier 非空时覆盖配置中的节点 ID
func Load(configFile string, identifier string) error {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("读取配置文件出错: %w", err)
	}

	var cfg GameConfiguration
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("解析配置文件出错: %w", err)
	}
	if identifier != "" {
		cfg.ID = identifier
	}
	if cfg.ID == "" {
		return fmt.Errorf("节点 ID 不能为空")
	}
	if err := cfg.OkeyConf.Validate(); err != nil {
		return err
	}
	GameNodeConfig = cfg
	okeyConf.Store(&cfg.OkeyConf)

	// 只热更新对局节奏，其他配置需要重启节点
	v.OnConfigChange(func(in fsnotify.Event) {
		var next GameConfiguration
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		if err := next.OkeyConf.Validate(); err != nil {
			return
		}
		okeyConf.Store(&next.OkeyConf)
	})
	v.WatchConfig()
	return nil
}

// Validate 检查对局节奏参数是否可用
func (c OkeyConf) Validate() error {
	if c.HumanTurnSeconds <= 0 || c.BotTurnMillis <= 0 {
		return fmt.Errorf("回合时长必须大于 0: human=%ds bot=%dms", c.HumanTurnSeconds, c.BotTurnMillis)
	}
	if c.WarningSeconds < 0 {
		return fmt.Errorf("预警时长不能为负数: %d", c.WarningSeconds)
	}
	if c.RoomTTLSeconds <= 0 || c.ActiveRoomTTLSeconds <= 0 {
		return fmt.Errorf("过期时间必须大于 0: room=%ds active=%ds", c.RoomTTLSeconds, c.ActiveRoomTTLSeconds)
	}
	return nil
}
