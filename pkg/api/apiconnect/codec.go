// Package apiconnect wires the taghiane.v1 services into Connect handlers and
// clients, using JSON as the only codec.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const (
	codecJSON        = "json"
	codecJSONCharset = "json; charset=utf-8"
)

// jsonCodec marshals plain structs with encoding/json and protobuf
// well-known types (such as emptypb.Empty) with protojson.
type jsonCodec struct {
	name string
}

var _ connect.Codec = jsonCodec{}

func (c jsonCodec) Name() string { return c.name }

func (c jsonCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if m, ok := v.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

// withJSON registers the codec under both JSON content types a browser may send.
func withJSON() connect.Option {
	return connect.WithOptions(
		connect.WithCodec(jsonCodec{name: codecJSON}),
		connect.WithCodec(jsonCodec{name: codecJSONCharset}),
	)
}
