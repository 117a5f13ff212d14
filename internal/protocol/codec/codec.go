package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/citychain/internal/protocol"
)

// Format 线路编码格式
type Format int

const (
	FormatProto Format = iota // 二进制帧
	FormatJSON                // 文本帧
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "proto"
}

// ParseFormat parses a configured codec name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "proto", "protobuf":
		return FormatProto, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatProto, fmt.Errorf("unknown codec %q", s)
	}
}

// Codec 消息编解码器
type Codec struct {
	format Format
}

// New creates a codec for the given format
func New(format Format) *Codec {
	return &Codec{format: format}
}

// Format returns the wire format
func (c *Codec) Format() Format {
	return c.format
}

// Binary reports whether frames should be sent as binary websocket messages.
func (c *Codec) Binary() bool {
	return c.format == FormatProto
}

// Encode 编码消息
func (c *Codec) Encode(msg *protocol.Message) ([]byte, error) {
	s := toStruct(msg)
	if c.format == FormatJSON {
		return protojson.Marshal(s)
	}
	return proto.Marshal(s)
}

// Decode 解码消息
func (c *Codec) Decode(data []byte) (*protocol.Message, error) {
	s := GetStruct()
	defer PutStruct(s)

	var err error
	if c.format == FormatJSON {
		err = protojson.Unmarshal(data, s)
	} else {
		err = proto.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s message: %w", c.format, err)
	}
	return fromStruct(s), nil
}

func toStruct(msg *protocol.Message) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"kind": structpb.NewStringValue(msg.Kind.String()),
	}

	switch msg.Kind {
	case protocol.KindList:
		values := make([]*structpb.Value, len(msg.Lines))
		for i, line := range msg.Lines {
			values[i] = structpb.NewStringValue(line)
		}
		fields["lines"] = structpb.NewListValue(&structpb.ListValue{Values: values})
	case protocol.KindError:
		fields["code"] = structpb.NewNumberValue(float64(msg.Code))
		fields["text"] = structpb.NewStringValue(msg.Text)
	default:
		fields["text"] = structpb.NewStringValue(msg.Text)
	}

	return &structpb.Struct{Fields: fields}
}

func fromStruct(s *structpb.Struct) *protocol.Message {
	fields := s.GetFields()
	msg := &protocol.Message{
		Kind: protocol.ParseKind(fields["kind"].GetStringValue()),
		Text: fields["text"].GetStringValue(),
		Code: int(fields["code"].GetNumberValue()),
	}

	if msg.Kind == protocol.KindList {
		values := fields["lines"].GetListValue().GetValues()
		msg.Lines = make([]string, len(values))
		for i, v := range values {
			msg.Lines[i] = v.GetStringValue()
		}
	}
	return msg
}
