package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName 请求以 application/grpc+json 传输，客户端需带上 CallContentSubtype(CodecName)
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
