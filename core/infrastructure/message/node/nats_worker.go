package node

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/infrastructure/message/transfer"
)

// LogicFunc 处理一条路由消息
type LogicFunc func(packet *transfer.ServicePacket)
type SubscriberHandler map[string]LogicFunc

// NatsWorker 节点间消息收发：readChan 收到的包按路由分发，writeChan 中的包异步发送
type NatsWorker struct {
	NatsCli           Client
	readChan          chan []byte
	writeChan         chan *transfer.ServicePacket
	subscriberHandler SubscriberHandler
	handlerMu         sync.RWMutex
	done              chan struct{}
	closeOnce         sync.Once
}

func NewNatsWorker() *NatsWorker {
	return &NatsWorker{
		readChan:          make(chan []byte, 1024),
		writeChan:         make(chan *transfer.ServicePacket, 1024),
		subscriberHandler: make(SubscriberHandler),
		done:              make(chan struct{}),
	}
}

// Run 连接 nats 并订阅 topic（通常为节点 ID）
func (worker *NatsWorker) Run(url string, topic string) error {
	return worker.RunWithClient(NewNatsClient(topic, worker.readChan), url)
}

// RunWithClient 使用指定的客户端启动，测试中可替换为内存实现
func (worker *NatsWorker) RunWithClient(cli Client, url string) error {
	worker.NatsCli = cli
	if err := worker.NatsCli.Run(url); err != nil {
		return err
	}
	go worker.readChanMessage()
	go worker.writeChanMessage()
	return nil
}

// Inbound 返回接收通道，供自定义 Client 写入原始消息
func (worker *NatsWorker) Inbound() chan<- []byte {
	return worker.readChan
}

func (worker *NatsWorker) readChanMessage() {
	for {
		select {
		case rawMessage := <-worker.readChan:
			var packet transfer.ServicePacket
			if err := json.Unmarshal(rawMessage, &packet); err != nil {
				log.Warn("NatsWorker-节点通信 packet 解析错误: %v", err)
				continue
			}
			worker.handlerMu.RLock()
			handler := worker.subscriberHandler[packet.Route]
			worker.handlerMu.RUnlock()
			if handler == nil {
				log.Warn("NatsWorker-不支持的路由类型: %s", packet.Route)
				continue
			}
			handler(&packet)
		case <-worker.done:
			return
		}
	}
}

func (worker *NatsWorker) writeChanMessage() {
	for {
		select {
		case message := <-worker.writeChan:
			marshal, err := json.Marshal(message)
			if err != nil {
				log.Error("nats 编码错误, route: %s, err: %v", message.Route, err)
				continue
			}
			if err := worker.NatsCli.SendMessage(message.Destination, marshal); err != nil {
				log.Error("nats 发送错误, destination: %s, route: %s, err: %v", message.Destination, message.Route, err)
			}
		case <-worker.done:
			return
		}
	}
}

// RegisterHandler 注册路由处理器，可多次调用
func (worker *NatsWorker) RegisterHandler(route string, handler LogicFunc) {
	worker.handlerMu.Lock()
	defer worker.handlerMu.Unlock()
	worker.subscriberHandler[route] = handler
}

// PushMessage 把消息写入 writeChan，由 writeChanMessage 协程发送
func (worker *NatsWorker) PushMessage(packet *transfer.ServicePacket) error {
	select {
	case worker.writeChan <- packet:
		return nil
	default:
		return fmt.Errorf("推送消息失败：writeChan 已满")
	}
}

func (worker *NatsWorker) Close() {
	worker.closeOnce.Do(func() {
		close(worker.done)
		if worker.NatsCli != nil {
			_ = worker.NatsCli.Close()
		}
	})
}
