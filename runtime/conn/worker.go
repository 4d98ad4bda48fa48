package conn

import (
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ubiproject-star/okey/common/config"
	"github.com/ubiproject-star/okey/common/jwts"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/common/utils"
	"github.com/ubiproject-star/okey/runtime/dto"
	"github.com/ubiproject-star/okey/runtime/game/share"
	"github.com/ubiproject-star/okey/runtime/march/application/service"
)

/*
长连接网关职责：
 1. 连接事件：鉴权、限流、升级，维护玩家长连接的生命周期与读写
 2. 断线重连：每条新连接都尝试恢复玩家进行中的对局，同一玩家的旧连接被踢出
 3. 游戏逻辑通信：解析客户端命令，绑定身份后交给 game Worker 或匹配队列
 4. 本节点投递：game Worker 推送的消息按连接 ID 写回客户端
*/

const bucketCount = 32

// GameGateway 连接层看到的 game Worker
type GameGateway interface {
	Dispatch(cmd share.RoomCommand)
	Reconnect(ctx context.Context, playerID string, origin share.Origin) error
	ActiveRoomOf(ctx context.Context, playerID string) (string, error)
}

type ClientBucket struct {
	sync.RWMutex
	clients map[string]*LongConnection
}

type Worker struct {
	nodeID string
	conf   config.ConnectorConf
	secret string

	websocketUpgrade      websocket.Upgrader
	ConnectionRateLimiter *utils.RateLimiter

	clientBuckets      []*ClientBucket
	bucketMask         uint32
	connMap            sync.Map // playerID -> *LongConnection
	currentConnections atomic.Int32

	game  GameGateway
	match service.MatchService
}

func NewWorker(nodeID string, conf config.ConnectorConf, secret string, game GameGateway, match service.MatchService) *Worker {
	w := &Worker{
		nodeID: nodeID,
		conf:   conf,
		secret: secret,
		websocketUpgrade: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		ConnectionRateLimiter: utils.NewRateLimiter(conf.RateLimit, conf.RateBurst),
		bucketMask:            uint32(bucketCount - 1),
		game:                  game,
		match:                 match,
	}
	w.clientBuckets = make([]*ClientBucket, bucketCount)
	for i := 0; i < bucketCount; i++ {
		w.clientBuckets[i] = &ClientBucket{clients: make(map[string]*LongConnection)}
	}
	return w
}

// ServeHTTP websocket 升级入口，挂在 GET /ws
func (w *Worker) ServeHTTP(writer http.ResponseWriter, r *http.Request) {
	claims, err := w.identifyUser(r)
	if err != nil {
		http.Error(writer, "unauthorized", http.StatusUnauthorized)
		log.Warn("连接鉴权失败 remote=%s err=%v", r.RemoteAddr, err)
		return
	}
	if !w.ConnectionRateLimiter.Allow() {
		http.Error(writer, "Too many connections", http.StatusTooManyRequests)
		log.Warn("连接速率限流 exceeded from %s", r.RemoteAddr)
		return
	}
	if w.conf.MaxConnections > 0 && int(w.currentConnections.Load()) >= w.conf.MaxConnections {
		http.Error(writer, dto.ErrServerAtCapacity.Error(), http.StatusServiceUnavailable)
		log.Warn("连接达到阈值 %s", r.RemoteAddr)
		return
	}

	ws, err := w.websocketUpgrade.Upgrade(writer, r, nil)
	if err != nil {
		log.Warn("websocket 升级失败: %v", err)
		return
	}

	client := newLongConnection(uuid.NewString(), ws, w, claims.PlayerID, claims.Name)
	w.addClient(client)
	w.BindUser(client)
	client.Run()
	log.Info("WebSocket 建立连接: player=%s, connID=%s, remote=%s", client.PlayerID, client.ConnID, r.RemoteAddr)

	go w.resume(client)
}

// identifyUser 从 barrier 参数或 Authorization 头解析玩家身份
func (w *Worker) identifyUser(r *http.Request) (*jwts.CustomClaims, error) {
	token := r.URL.Query().Get("barrier")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return nil, dto.ErrMissingToken
	}
	if w.secret == "" {
		return nil, errors.New("未配置 jwt secret")
	}
	return jwts.ParseToken(token, w.secret)
}

// resume 新连接建立后尝试恢复进行中的对局，玩过但对局已结束的玩家会收到 reconnect_failed
func (w *Worker) resume(client *LongConnection) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := w.game.Reconnect(ctx, client.PlayerID, client.Origin()); err != nil {
		log.Debug("玩家 %s 没有可恢复的对局: %v", client.PlayerID, err)
	}
}

func (w *Worker) addClient(client *LongConnection) {
	bucket := w.getBucket(client.ConnID)
	bucket.Lock()
	bucket.clients[client.ConnID] = client
	bucket.Unlock()
	w.currentConnections.Add(1)
}

// removeClient 连接断开：只清理连接层的记录和排队，房间状态保持不变
func (w *Worker) removeClient(client *LongConnection) {
	bucket := w.getBucket(client.ConnID)
	bucket.Lock()
	_, ok := bucket.clients[client.ConnID]
	delete(bucket.clients, client.ConnID)
	bucket.Unlock()

	client.Close()
	if !ok {
		return
	}
	w.currentConnections.Add(-1)

	if w.UnbindUser(client) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = w.match.LeaveQueue(ctx, client.PlayerID)
	}
}

// BindUser 同一玩家在本节点只保留最新的连接
func (w *Worker) BindUser(client *LongConnection) {
	if old, loaded := w.connMap.Swap(client.PlayerID, client); loaded {
		if existing, ok := old.(*LongConnection); ok && existing != client {
			log.Info("玩家 %s 已有连接，踢出旧连接 %s", client.PlayerID, existing.ConnID)
			existing.Close()
		}
	}
}

// UnbindUser 返回这条连接是否仍是玩家的当前连接
func (w *Worker) UnbindUser(client *LongConnection) bool {
	return w.connMap.CompareAndDelete(client.PlayerID, client)
}

// Deliver 实现 game.LocalDelivery
func (w *Worker) Deliver(connectionIDs []string, payload []byte) {
	for _, connID := range connectionIDs {
		client, ok := w.lookup(connID)
		if !ok {
			log.Debug("投递时连接 %s 已不在本节点", connID)
			continue
		}
		if err := client.SendMessage(payload); err != nil {
			log.Warn("投递到连接 %s 失败: %v", connID, err)
		}
	}
}

// Kick 实现 game.LocalDelivery
func (w *Worker) Kick(connectionID string) {
	if client, ok := w.lookup(connectionID); ok {
		client.Close()
	}
}

func (w *Worker) lookup(connID string) (*LongConnection, bool) {
	bucket := w.getBucket(connID)
	bucket.RLock()
	defer bucket.RUnlock()
	client, ok := bucket.clients[connID]
	return client, ok
}

func (w *Worker) ConnectionCount() int {
	return int(w.currentConnections.Load())
}

func (w *Worker) getBucket(connID string) *ClientBucket {
	return w.clientBuckets[fnv32(connID)&w.bucketMask]
}

func fnv32(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

func (w *Worker) sendBuffer() int {
	if w.conf.SendBuffer > 0 {
		return w.conf.SendBuffer
	}
	return 64
}

func (w *Worker) commandRate() int {
	if w.conf.CommandRate > 0 {
		return w.conf.CommandRate
	}
	return 20
}

func (w *Worker) pongWait() time.Duration {
	if w.conf.PongWait > 0 {
		return time.Duration(w.conf.PongWait) * time.Second
	}
	return 60 * time.Second
}

func (w *Worker) pingInterval() time.Duration {
	return w.pongWait() * 9 / 10
}

func (w *Worker) writeWait() time.Duration {
	if w.conf.WriteWait > 0 {
		return time.Duration(w.conf.WriteWait) * time.Second
	}
	return 10 * time.Second
}

// Close 断开本节点所有连接
func (w *Worker) Close() {
	for _, bucket := range w.clientBuckets {
		bucket.RLock()
		clients := make([]*LongConnection, 0, len(bucket.clients))
		for _, client := range bucket.clients {
			clients = append(clients, client)
		}
		bucket.RUnlock()
		for _, client := range clients {
			client.Close()
		}
	}
	log.Info("connector[%s] 已关闭所有连接", w.nodeID)
}
