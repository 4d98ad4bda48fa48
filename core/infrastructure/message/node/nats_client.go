package node

import (
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/ubiproject-star/okey/common/log"
)

var ErrNotConnected = errors.New("nats not connected")

type Client interface {
	Run(url string) error
	SendMessage(subject string, data []byte) error
	Close() error
}

// NatsClient 订阅本节点 topic，收到的消息写入 readChan
type NatsClient struct {
	topic    string
	conn     *nats.Conn
	sub      *nats.Subscription
	readChan chan []byte
}

func NewNatsClient(topic string, readChan chan []byte) *NatsClient {
	return &NatsClient{
		topic:    topic,
		readChan: readChan,
	}
}

func (nc *NatsClient) IsConnected() bool {
	return nc.conn != nil && nc.conn.IsConnected()
}

func (nc *NatsClient) Run(url string) error {
	log.Info("nats 服务正在连接, url:%s", url)
	conn, err := nats.Connect(url, nats.Name(nc.topic), nats.MaxReconnects(-1))
	if err != nil {
		return err
	}
	nc.conn = conn

	nc.sub, err = nc.conn.Subscribe(nc.topic, func(message *nats.Msg) {
		nc.readChan <- message.Data
	})
	if err != nil {
		nc.conn.Close()
		return err
	}
	log.Info("nats 订阅成功, topic:%s", nc.topic)
	return nil
}

func (nc *NatsClient) SendMessage(subject string, data []byte) error {
	if !nc.IsConnected() {
		return ErrNotConnected
	}
	return nc.conn.Publish(subject, data)
}

func (nc *NatsClient) Close() error {
	if nc.conn == nil {
		return nil
	}
	if nc.sub != nil {
		_ = nc.sub.Unsubscribe()
	}
	// Drain 会等待已收到的消息处理完再关闭
	if err := nc.conn.Drain(); err != nil {
		nc.conn.Close()
	}
	log.Info("NATS 连接已关闭")
	return nil
}
