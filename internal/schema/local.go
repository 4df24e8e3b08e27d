package schema

import (
	"fmt"
	"strconv"

	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/event"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Local service names.
const (
	TimeProducerService = "local.TimeProducer"
	StreamTimesMethod   = "/local.TimeProducer/StreamTimes"
)

func localFileProto() *descriptorpb.FileDescriptorProto {
	const (
		tString = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tInt32  = descriptorpb.FieldDescriptorProto_TYPE_INT32
	)
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("local.proto"),
		Package: proto.String("local"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("Empty")},
			{
				Name: proto.String("TimeMessage"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("seconds", 1, tString),
					field("nanos", 2, tInt32),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("TimeProducer"),
			Method: []*descriptorpb.MethodDescriptorProto{method("StreamTimes", ".local.Empty", ".local.TimeMessage", false, true)},
		}},
	}
}

// LocalFile returns the local.proto descriptor.
func LocalFile() protoreflect.FileDescriptor { return localFile }

// NewEmpty returns a local.Empty message.
func NewEmpty() *dynamicpb.Message {
	return dynamicpb.NewMessage(localFile.Messages().ByName("Empty"))
}

// NewTimeMessage returns an empty local.TimeMessage.
func NewTimeMessage() *dynamicpb.Message {
	return dynamicpb.NewMessage(localFile.Messages().ByName("TimeMessage"))
}

// EncodeTime builds the TimeMessage for ev, seconds rendered as decimal text.
func EncodeTime(ev event.Event) *dynamicpb.Message {
	m := NewTimeMessage()
	fields := m.Descriptor().Fields()
	m.Set(fields.ByName("seconds"), protoreflect.ValueOfString(strconv.FormatInt(ev.Seconds, 10)))
	m.Set(fields.ByName("nanos"), protoreflect.ValueOfInt32(ev.Nanos))
	return m
}

// DecodeTime reads a TimeMessage into a text-encoded item. The seconds text
// is not parsed here; a malformed value fails when the consumer measures it.
func DecodeTime(m protoreflect.Message) (consumer.Item, error) {
	d := m.Descriptor()
	if d.FullName() != "local.TimeMessage" {
		return consumer.Item{}, fmt.Errorf("schema: expected local.TimeMessage, got %s", d.FullName())
	}
	fields := d.Fields()
	secs := m.Get(fields.ByName("seconds")).String()
	nanos := int32(m.Get(fields.ByName("nanos")).Int())
	return consumer.Item{Stamp: event.TextStamp(secs, nanos), Kind: consumer.KindTime}, nil
}
