package transfer

import "encoding/json"

// ServicePacket 节点之间通过 nats 传递的数据包
// Destination 为目标节点的订阅 topic，PushConns 为目标节点上需要投递的连接
type ServicePacket struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Route       string          `json:"route"`
	PushConns   []string        `json:"pushConns,omitempty"`
	Data        json.RawMessage `json:"data"`
}
