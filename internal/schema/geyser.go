package schema

import (
	"fmt"

	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/event"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Geyser service names.
const (
	GeyserService   = "geyser.Geyser"
	SubscribeMethod = "/geyser.Geyser/Subscribe"
)

func geyserFileProto() *descriptorpb.FileDescriptorProto {
	const (
		tString = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tBytes  = descriptorpb.FieldDescriptorProto_TYPE_BYTES
		tBool   = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		tUint64 = descriptorpb.FieldDescriptorProto_TYPE_UINT64
		tInt32  = descriptorpb.FieldDescriptorProto_TYPE_INT32
		tEnum   = descriptorpb.FieldDescriptorProto_TYPE_ENUM
	)
	msg := func(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
		return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
	}

	subscribeRequest := msg("SubscribeRequest",
		msgField("accounts", 1, ".geyser.SubscribeRequest.AccountsEntry", repeated),
		msgField("slots", 2, ".geyser.SubscribeRequest.SlotsEntry", repeated),
		msgField("transactions", 3, ".geyser.SubscribeRequest.TransactionsEntry", repeated),
		typed("commitment", 6, tEnum, ".geyser.CommitmentLevel", optional(0)),
		field("from_slot", 11, tUint64, optional(1)),
	)
	subscribeRequest.NestedType = []*descriptorpb.DescriptorProto{
		mapEntry("AccountsEntry", ".geyser.SubscribeRequestFilterAccounts"),
		mapEntry("SlotsEntry", ".geyser.SubscribeRequestFilterSlots"),
		mapEntry("TransactionsEntry", ".geyser.SubscribeRequestFilterTransactions"),
	}
	subscribeRequest.OneofDecl = oneofs("_commitment", "_from_slot")

	filterAccounts := msg("SubscribeRequestFilterAccounts",
		field("account", 2, tString, repeated),
		field("owner", 3, tString, repeated),
		msgField("filters", 4, ".geyser.SubscribeRequestFilterAccountsFilter", repeated),
		field("nonempty_txn_signature", 5, tBool, optional(0)),
	)
	filterAccounts.OneofDecl = oneofs("_nonempty_txn_signature")

	accountsFilter := msg("SubscribeRequestFilterAccountsFilter",
		msgField("memcmp", 1, ".geyser.SubscribeRequestFilterAccountsFilterMemcmp", inOneof(0)),
		field("datasize", 2, tUint64, inOneof(0)),
		field("token_account_state", 3, tBool, inOneof(0)),
	)
	accountsFilter.OneofDecl = oneofs("filter")

	memcmp := msg("SubscribeRequestFilterAccountsFilterMemcmp",
		field("offset", 1, tUint64),
		field("bytes", 2, tBytes, inOneof(0)),
		field("base58", 3, tString, inOneof(0)),
		field("base64", 4, tString, inOneof(0)),
	)
	memcmp.OneofDecl = oneofs("data")

	filterSlots := msg("SubscribeRequestFilterSlots",
		field("filter_by_commitment", 1, tBool, optional(0)),
	)
	filterSlots.OneofDecl = oneofs("_filter_by_commitment")

	filterTransactions := msg("SubscribeRequestFilterTransactions",
		field("vote", 1, tBool, optional(0)),
		field("failed", 2, tBool, optional(1)),
		field("account_include", 3, tString, repeated),
		field("account_exclude", 4, tString, repeated),
		field("signature", 5, tString, optional(2)),
		field("account_required", 6, tString, repeated),
	)
	filterTransactions.OneofDecl = oneofs("_vote", "_failed", "_signature")

	update := msg("SubscribeUpdate",
		field("filters", 1, tString, repeated),
		msgField("account", 2, ".geyser.SubscribeUpdateAccount", inOneof(0)),
		msgField("slot", 3, ".geyser.SubscribeUpdateSlot", inOneof(0)),
		msgField("transaction", 4, ".geyser.SubscribeUpdateTransaction", inOneof(0)),
		msgField("block", 5, ".geyser.SubscribeUpdateBlock", inOneof(0)),
		msgField("ping", 6, ".geyser.SubscribeUpdatePing", inOneof(0)),
		msgField("block_meta", 7, ".geyser.SubscribeUpdateBlockMeta", inOneof(0)),
		msgField("entry", 8, ".geyser.SubscribeUpdateEntry", inOneof(0)),
		msgField("pong", 9, ".geyser.SubscribeUpdatePong", inOneof(0)),
		msgField("created_at", 11, ".google.protobuf.Timestamp"),
	)
	update.OneofDecl = oneofs("update_oneof")

	updateSlot := msg("SubscribeUpdateSlot",
		field("slot", 1, tUint64),
		field("parent", 2, tUint64, optional(0)),
	)
	updateSlot.OneofDecl = oneofs("_parent")

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("geyser.proto"),
		Package:    proto.String("geyser"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/timestamp.proto"},
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name: proto.String("CommitmentLevel"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("PROCESSED"), Number: proto.Int32(0)},
				{Name: proto.String("CONFIRMED"), Number: proto.Int32(1)},
				{Name: proto.String("FINALIZED"), Number: proto.Int32(2)},
			},
		}},
		MessageType: []*descriptorpb.DescriptorProto{
			subscribeRequest,
			filterAccounts,
			accountsFilter,
			memcmp,
			filterSlots,
			filterTransactions,
			update,
			msg("SubscribeUpdateAccount",
				msgField("account", 1, ".geyser.SubscribeUpdateAccountInfo"),
				field("slot", 2, tUint64),
				field("is_startup", 3, tBool),
			),
			msg("SubscribeUpdateAccountInfo",
				field("pubkey", 1, tBytes),
				field("lamports", 2, tUint64),
				field("owner", 3, tBytes),
				field("executable", 4, tBool),
				field("rent_epoch", 5, tUint64),
				field("data", 6, tBytes),
				field("write_version", 7, tUint64),
			),
			updateSlot,
			msg("SubscribeUpdateTransaction",
				msgField("transaction", 1, ".geyser.SubscribeUpdateTransactionInfo"),
				field("slot", 2, tUint64),
			),
			msg("SubscribeUpdateTransactionInfo",
				field("signature", 1, tBytes),
				field("is_vote", 2, tBool),
				field("index", 5, tUint64),
			),
			msg("SubscribeUpdateBlock",
				field("slot", 1, tUint64),
				field("blockhash", 2, tString),
				field("parent_slot", 7, tUint64),
				field("parent_blockhash", 8, tString),
				field("executed_transaction_count", 9, tUint64),
			),
			msg("SubscribeUpdateBlockMeta",
				field("slot", 1, tUint64),
				field("blockhash", 2, tString),
			),
			msg("SubscribeUpdateEntry",
				field("slot", 1, tUint64),
				field("index", 2, tUint64),
				field("num_hashes", 3, tUint64),
				field("hash", 4, tBytes),
				field("executed_transaction_count", 5, tUint64),
			),
			msg("SubscribeUpdatePing"),
			msg("SubscribeUpdatePong", field("id", 1, tInt32)),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("Geyser"),
			Method: []*descriptorpb.MethodDescriptorProto{method("Subscribe", ".geyser.SubscribeRequest", ".geyser.SubscribeUpdate", true, true)},
		}},
	}
}

// GeyserFile returns the geyser.proto descriptor.
func GeyserFile() protoreflect.FileDescriptor { return geyserFile }

// CommitmentLevel returns the geyser.CommitmentLevel enum.
func CommitmentLevel() protoreflect.EnumDescriptor {
	return geyserFile.Enums().ByName("CommitmentLevel")
}

// NewSubscribeRequest returns an empty geyser.SubscribeRequest.
func NewSubscribeRequest() *dynamicpb.Message {
	return dynamicpb.NewMessage(geyserFile.Messages().ByName("SubscribeRequest"))
}

// NewSubscribeUpdate returns an empty geyser.SubscribeUpdate.
func NewSubscribeUpdate() *dynamicpb.Message {
	return dynamicpb.NewMessage(geyserFile.Messages().ByName("SubscribeUpdate"))
}

// kinds maps update_oneof members to item kinds.
var kinds = map[protoreflect.Name]string{
	"account":     consumer.KindAccount,
	"slot":        consumer.KindSlot,
	"transaction": consumer.KindTransaction,
	"block":       consumer.KindBlock,
	"ping":        consumer.KindPing,
	"block_meta":  consumer.KindBlockMeta,
	"entry":       consumer.KindEntry,
	"pong":        consumer.KindPong,
}

// DecodeUpdate reads the kind, slot and created_at of a SubscribeUpdate.
// An update without created_at carries the zero stamp.
func DecodeUpdate(m protoreflect.Message) (consumer.Item, error) {
	d := m.Descriptor()
	if d.FullName() != "geyser.SubscribeUpdate" {
		return consumer.Item{}, fmt.Errorf("schema: expected geyser.SubscribeUpdate, got %s", d.FullName())
	}
	it := consumer.Item{Stamp: event.NativeStamp(0, 0), Kind: consumer.KindOther}

	if fd := d.Fields().ByName("created_at"); m.Has(fd) {
		ts := m.Get(fd).Message()
		tf := ts.Descriptor().Fields()
		it.Stamp = event.NativeStamp(ts.Get(tf.ByName("seconds")).Int(), int32(ts.Get(tf.ByName("nanos")).Int()))
	}

	fd := m.WhichOneof(d.Oneofs().ByName("update_oneof"))
	if fd == nil {
		return it, nil
	}
	if k, ok := kinds[fd.Name()]; ok {
		it.Kind = k
	}
	body := m.Get(fd).Message()
	if sf := body.Descriptor().Fields().ByName("slot"); sf != nil && sf.Kind() == protoreflect.Uint64Kind {
		it.Slot = body.Get(sf).Uint()
	}
	return it, nil
}

// SlotUpdate builds a slot update, as a feed would send it.
func SlotUpdate(filters []string, slot uint64, createdAt *timestamppb.Timestamp) *dynamicpb.Message {
	m := NewSubscribeUpdate()
	body := newUpdateBody(m, "slot")
	body.Set(body.Descriptor().Fields().ByName("slot"), protoreflect.ValueOfUint64(slot))
	return finishUpdate(m, filters, createdAt)
}

// AccountUpdate builds an account update, as a feed would send it.
func AccountUpdate(filters []string, slot uint64, pubkey []byte, createdAt *timestamppb.Timestamp) *dynamicpb.Message {
	m := NewSubscribeUpdate()
	body := newUpdateBody(m, "account")
	bf := body.Descriptor().Fields()
	body.Set(bf.ByName("slot"), protoreflect.ValueOfUint64(slot))
	info := body.Mutable(bf.ByName("account")).Message()
	info.Set(info.Descriptor().Fields().ByName("pubkey"), protoreflect.ValueOfBytes(pubkey))
	return finishUpdate(m, filters, createdAt)
}

// PongUpdate builds a pong reply.
func PongUpdate(id int32, createdAt *timestamppb.Timestamp) *dynamicpb.Message {
	m := NewSubscribeUpdate()
	body := newUpdateBody(m, "pong")
	body.Set(body.Descriptor().Fields().ByName("id"), protoreflect.ValueOfInt32(id))
	return finishUpdate(m, nil, createdAt)
}

func newUpdateBody(m *dynamicpb.Message, name protoreflect.Name) protoreflect.Message {
	return m.Mutable(m.Descriptor().Fields().ByName(name)).Message()
}

func finishUpdate(m *dynamicpb.Message, filters []string, createdAt *timestamppb.Timestamp) *dynamicpb.Message {
	fields := m.Descriptor().Fields()
	if len(filters) > 0 {
		list := m.Mutable(fields.ByName("filters")).List()
		for _, f := range filters {
			list.Append(protoreflect.ValueOfString(f))
		}
	}
	if createdAt != nil {
		m.Set(fields.ByName("created_at"), protoreflect.ValueOfMessage(createdAt.ProtoReflect()))
	}
	return m
}
