package schema

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

type fieldOpt func(*descriptorpb.FieldDescriptorProto)

func repeated(f *descriptorpb.FieldDescriptorProto) {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
}

func inOneof(idx int32) fieldOpt {
	return func(f *descriptorpb.FieldDescriptorProto) { f.OneofIndex = proto.Int32(idx) }
}

// optional marks a proto3 optional field; idx is its synthetic oneof.
func optional(idx int32) fieldOpt {
	return func(f *descriptorpb.FieldDescriptorProto) {
		f.OneofIndex = proto.Int32(idx)
		f.Proto3Optional = proto.Bool(true)
	}
}

func field(name string, num int32, t descriptorpb.FieldDescriptorProto_Type, opts ...fieldOpt) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Type:   t.Enum(),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func typed(name string, num int32, t descriptorpb.FieldDescriptorProto_Type, typeName string, opts ...fieldOpt) *descriptorpb.FieldDescriptorProto {
	f := field(name, num, t, opts...)
	f.TypeName = proto.String(typeName)
	return f
}

func msgField(name string, num int32, typeName string, opts ...fieldOpt) *descriptorpb.FieldDescriptorProto {
	return typed(name, num, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, typeName, opts...)
}

func oneofs(names ...string) []*descriptorpb.OneofDescriptorProto {
	out := make([]*descriptorpb.OneofDescriptorProto, len(names))
	for i, n := range names {
		out[i] = &descriptorpb.OneofDescriptorProto{Name: proto.String(n)}
	}
	return out
}

// mapEntry declares the synthetic entry message of a map<string, valueType> field.
func mapEntry(name, valueType string) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name: proto.String(name),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			msgField("value", 2, valueType),
		},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
}

func method(name, in, out string, clientStreaming, serverStreaming bool) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:            proto.String(name),
		InputType:       proto.String(in),
		OutputType:      proto.String(out),
		ClientStreaming: proto.Bool(clientStreaming),
		ServerStreaming: proto.Bool(serverStreaming),
	}
}
