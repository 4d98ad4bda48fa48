package conn

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/common/utils"
	"github.com/ubiproject-star/okey/runtime/dto"
	"github.com/ubiproject-star/okey/runtime/game/share"
)

// LongConnection 一条玩家长连接。读协程串行处理这条连接上的命令，写协程独占 websocket 写
type LongConnection struct {
	ConnID   string
	PlayerID string
	Name     string
	Conn     *websocket.Conn

	worker    *Worker
	WriteChan chan []byte
	limiter   *utils.RateLimiter
	closeChan chan struct{}
	closeOnce sync.Once
}

func newLongConnection(connID string, ws *websocket.Conn, worker *Worker, playerID, name string) *LongConnection {
	return &LongConnection{
		ConnID:    connID,
		PlayerID:  playerID,
		Name:      name,
		Conn:      ws,
		worker:    worker,
		WriteChan: make(chan []byte, worker.sendBuffer()),
		limiter:   utils.NewRateLimiter(worker.commandRate(), worker.commandRate()),
		closeChan: make(chan struct{}),
	}
}

// Origin 本连接在集群中的地址
func (con *LongConnection) Origin() share.Origin {
	return share.Origin{ConnectionID: con.ConnID, ConnectorID: con.worker.nodeID}
}

func (con *LongConnection) Run() {
	go con.readMessage()
	go con.writeMessage()
}

func (con *LongConnection) writeMessage() {
	pingTicker := time.NewTicker(con.worker.pingInterval())
	defer pingTicker.Stop()

	for {
		select {
		case message := <-con.WriteChan:
			_ = con.Conn.SetWriteDeadline(time.Now().Add(con.worker.writeWait()))
			if err := con.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("客户端[%s] write stream err: %v", con.ConnID, err)
				con.Close()
				return
			}
		case <-pingTicker.C:
			_ = con.Conn.SetWriteDeadline(time.Now().Add(con.worker.writeWait()))
			if err := con.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("客户端[%s] ping err: %v", con.ConnID, err)
				con.Close()
				return
			}
		case <-con.closeChan:
			return
		}
	}
}

func (con *LongConnection) readMessage() {
	defer func() {
		log.Debug("客户端[%s] 读循环停止", con.ConnID)
		con.worker.removeClient(con)
	}()

	pongWait := con.worker.pongWait()
	con.Conn.SetReadLimit(int64(con.worker.conf.ReadLimit))
	if err := con.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("SetReadDeadline err: %v", err)
		return
	}
	con.Conn.SetPongHandler(func(string) error {
		return con.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := con.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("客户端[%s] 异常断开: %v", con.ConnID, err)
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		_ = con.Conn.SetReadDeadline(time.Now().Add(pongWait))
		con.worker.handleMessage(con, message)
	}
}

// SendMessage 非阻塞写入，写缓冲满时丢弃并返回错误
func (con *LongConnection) SendMessage(buf []byte) error {
	select {
	case <-con.closeChan:
		return dto.ErrConnectionClosed
	default:
	}
	select {
	case con.WriteChan <- buf:
		return nil
	case <-con.closeChan:
		return dto.ErrConnectionClosed
	default:
		return dto.ErrSendChanFull
	}
}

// SendEvent 直接回给这条连接
func (con *LongConnection) SendEvent(ev share.OutboundEvent) {
	payload, err := share.Encode(ev)
	if err != nil {
		log.Error("客户端[%s] 编码 %s 失败: %v", con.ConnID, ev.EventName(), err)
		return
	}
	if err := con.SendMessage(payload); err != nil {
		log.Warn("客户端[%s] 发送 %s 失败: %v", con.ConnID, ev.EventName(), err)
	}
}

func (con *LongConnection) Close() {
	con.closeOnce.Do(func() {
		close(con.closeChan)
		_ = con.Conn.Close()
		log.Info("客户端[%s] 连接关闭, player=%s", con.ConnID, con.PlayerID)
	})
}
