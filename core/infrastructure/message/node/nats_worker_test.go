package node

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/core/infrastructure/message/transfer"
)

// loopbackClient 把发往 topic 的消息直接写回本节点
type loopbackClient struct {
	topic   string
	inbound chan<- []byte
}

func (c *loopbackClient) Run(string) error { return nil }

func (c *loopbackClient) SendMessage(subject string, data []byte) error {
	if subject == c.topic {
		c.inbound <- data
	}
	return nil
}

func (c *loopbackClient) Close() error { return nil }

func TestNatsWorkerRoutesPackets(t *testing.T) {
	worker := NewNatsWorker()
	defer worker.Close()

	received := make(chan *transfer.ServicePacket, 1)
	worker.RegisterHandler(transfer.GamePush, func(packet *transfer.ServicePacket) {
		received <- packet
	})
	require.NoError(t, worker.RunWithClient(&loopbackClient{topic: "node-1", inbound: worker.Inbound()}, ""))

	err := worker.PushMessage(&transfer.ServicePacket{
		Source:      "node-2",
		Destination: "node-1",
		Route:       transfer.GamePush,
		PushConns:   []string{"c1"},
		Data:        json.RawMessage(`{"type":"tile_drawn"}`),
	})
	require.NoError(t, err)

	select {
	case packet := <-received:
		assert.Equal(t, "node-2", packet.Source)
		assert.Equal(t, []string{"c1"}, packet.PushConns)
		assert.JSONEq(t, `{"type":"tile_drawn"}`, string(packet.Data))
	case <-time.After(time.Second):
		t.Fatalf("没有收到推送")
	}
}

func TestNatsWorkerDropsUnknownRoute(t *testing.T) {
	worker := NewNatsWorker()
	defer worker.Close()

	received := make(chan struct{}, 1)
	worker.RegisterHandler(transfer.GamePush, func(*transfer.ServicePacket) {
		received <- struct{}{}
	})
	require.NoError(t, worker.RunWithClient(&loopbackClient{topic: "node-1", inbound: worker.Inbound()}, ""))

	require.NoError(t, worker.PushMessage(&transfer.ServicePacket{Destination: "node-1", Route: "unknown"}))

	select {
	case <-received:
		t.Fatalf("未注册的路由不应被处理")
	case <-time.After(100 * time.Millisecond):
	}
}
