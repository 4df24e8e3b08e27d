package feed

import (
	"fmt"

	"github.com/rzbill/streamlat/internal/schema"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Proto encodes r as a geyser.SubscribeRequest.
func (r SubscribeRequest) Proto() *dynamicpb.Message {
	m := schema.NewSubscribeRequest()
	fields := m.Descriptor().Fields()

	if len(r.Accounts) > 0 {
		fd := fields.ByName("accounts")
		mp := m.Mutable(fd).Map()
		for name, f := range r.Accounts {
			v := mp.NewValue()
			encodeAccounts(v.Message(), f)
			mp.Set(protoreflect.ValueOfString(name).MapKey(), v)
		}
	}
	if len(r.Slots) > 0 {
		mp := m.Mutable(fields.ByName("slots")).Map()
		for name, f := range r.Slots {
			v := mp.NewValue()
			if f.FilterByCommitment != nil {
				setBool(v.Message(), "filter_by_commitment", *f.FilterByCommitment)
			}
			mp.Set(protoreflect.ValueOfString(name).MapKey(), v)
		}
	}
	if len(r.Transactions) > 0 {
		mp := m.Mutable(fields.ByName("transactions")).Map()
		for name, f := range r.Transactions {
			v := mp.NewValue()
			encodeTransactions(v.Message(), f)
			mp.Set(protoreflect.ValueOfString(name).MapKey(), v)
		}
	}
	if r.Commitment != nil {
		m.Set(fields.ByName("commitment"), protoreflect.ValueOfEnum(protoreflect.EnumNumber(*r.Commitment)))
	}
	if r.FromSlot != nil {
		m.Set(fields.ByName("from_slot"), protoreflect.ValueOfUint64(*r.FromSlot))
	}
	return m
}

func encodeAccounts(m protoreflect.Message, f AccountsFilter) {
	setStrings(m, "account", f.Account)
	setStrings(m, "owner", f.Owner)
	if len(f.Filters) > 0 {
		list := m.Mutable(m.Descriptor().Fields().ByName("filters")).List()
		for _, df := range f.Filters {
			v := list.NewElement()
			encodeDataFilter(v.Message(), df)
			list.Append(v)
		}
	}
	if f.NonemptyTxnSignature != nil {
		setBool(m, "nonempty_txn_signature", *f.NonemptyTxnSignature)
	}
}

func encodeDataFilter(m protoreflect.Message, f AccountDataFilter) {
	fields := m.Descriptor().Fields()
	switch {
	case f.Memcmp != nil:
		mc := m.Mutable(fields.ByName("memcmp")).Message()
		mf := mc.Descriptor().Fields()
		mc.Set(mf.ByName("offset"), protoreflect.ValueOfUint64(f.Memcmp.Offset))
		switch {
		case f.Memcmp.Bytes != nil:
			mc.Set(mf.ByName("bytes"), protoreflect.ValueOfBytes(f.Memcmp.Bytes))
		case f.Memcmp.Base58 != "":
			mc.Set(mf.ByName("base58"), protoreflect.ValueOfString(f.Memcmp.Base58))
		case f.Memcmp.Base64 != "":
			mc.Set(mf.ByName("base64"), protoreflect.ValueOfString(f.Memcmp.Base64))
		}
	case f.DataSize != nil:
		m.Set(fields.ByName("datasize"), protoreflect.ValueOfUint64(*f.DataSize))
	case f.TokenAccountState != nil:
		setBool(m, "token_account_state", *f.TokenAccountState)
	}
}

func encodeTransactions(m protoreflect.Message, f TransactionsFilter) {
	if f.Vote != nil {
		setBool(m, "vote", *f.Vote)
	}
	if f.Failed != nil {
		setBool(m, "failed", *f.Failed)
	}
	if f.Signature != "" {
		m.Set(m.Descriptor().Fields().ByName("signature"), protoreflect.ValueOfString(f.Signature))
	}
	setStrings(m, "account_include", f.AccountInclude)
	setStrings(m, "account_exclude", f.AccountExclude)
	setStrings(m, "account_required", f.AccountRequired)
}

func setBool(m protoreflect.Message, name protoreflect.Name, v bool) {
	m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfBool(v))
}

func setStrings(m protoreflect.Message, name protoreflect.Name, vs []string) {
	if len(vs) == 0 {
		return
	}
	list := m.Mutable(m.Descriptor().Fields().ByName(name)).List()
	for _, s := range vs {
		list.Append(protoreflect.ValueOfString(s))
	}
}

// RequestFromProto decodes a geyser.SubscribeRequest.
func RequestFromProto(m protoreflect.Message) (SubscribeRequest, error) {
	d := m.Descriptor()
	if d.FullName() != "geyser.SubscribeRequest" {
		return SubscribeRequest{}, fmt.Errorf("feed: expected geyser.SubscribeRequest, got %s", d.FullName())
	}
	fields := d.Fields()
	var r SubscribeRequest

	if mp := m.Get(fields.ByName("accounts")).Map(); mp.Len() > 0 {
		r.Accounts = make(map[string]AccountsFilter, mp.Len())
		mp.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			r.Accounts[k.String()] = decodeAccounts(v.Message())
			return true
		})
	}
	if mp := m.Get(fields.ByName("slots")).Map(); mp.Len() > 0 {
		r.Slots = make(map[string]SlotsFilter, mp.Len())
		mp.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			r.Slots[k.String()] = SlotsFilter{FilterByCommitment: getBool(v.Message(), "filter_by_commitment")}
			return true
		})
	}
	if mp := m.Get(fields.ByName("transactions")).Map(); mp.Len() > 0 {
		r.Transactions = make(map[string]TransactionsFilter, mp.Len())
		mp.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			r.Transactions[k.String()] = decodeTransactions(v.Message())
			return true
		})
	}
	if fd := fields.ByName("commitment"); m.Has(fd) {
		c := Commitment(m.Get(fd).Enum())
		r.Commitment = &c
	}
	if fd := fields.ByName("from_slot"); m.Has(fd) {
		s := m.Get(fd).Uint()
		r.FromSlot = &s
	}
	return r, nil
}

func decodeAccounts(m protoreflect.Message) AccountsFilter {
	f := AccountsFilter{
		Account:              getStrings(m, "account"),
		Owner:                getStrings(m, "owner"),
		NonemptyTxnSignature: getBool(m, "nonempty_txn_signature"),
	}
	list := m.Get(m.Descriptor().Fields().ByName("filters")).List()
	for i := 0; i < list.Len(); i++ {
		f.Filters = append(f.Filters, decodeDataFilter(list.Get(i).Message()))
	}
	return f
}

func decodeDataFilter(m protoreflect.Message) AccountDataFilter {
	var f AccountDataFilter
	fd := m.WhichOneof(m.Descriptor().Oneofs().ByName("filter"))
	if fd == nil {
		return f
	}
	switch fd.Name() {
	case "memcmp":
		mc := m.Get(fd).Message()
		mf := mc.Descriptor().Fields()
		f.Memcmp = &Memcmp{Offset: mc.Get(mf.ByName("offset")).Uint()}
		if dfd := mc.WhichOneof(mc.Descriptor().Oneofs().ByName("data")); dfd != nil {
			switch dfd.Name() {
			case "bytes":
				f.Memcmp.Bytes = mc.Get(dfd).Bytes()
			case "base58":
				f.Memcmp.Base58 = mc.Get(dfd).String()
			case "base64":
				f.Memcmp.Base64 = mc.Get(dfd).String()
			}
		}
	case "datasize":
		n := m.Get(fd).Uint()
		f.DataSize = &n
	case "token_account_state":
		b := m.Get(fd).Bool()
		f.TokenAccountState = &b
	}
	return f
}

func decodeTransactions(m protoreflect.Message) TransactionsFilter {
	return TransactionsFilter{
		Vote:            getBool(m, "vote"),
		Failed:          getBool(m, "failed"),
		Signature:       m.Get(m.Descriptor().Fields().ByName("signature")).String(),
		AccountInclude:  getStrings(m, "account_include"),
		AccountExclude:  getStrings(m, "account_exclude"),
		AccountRequired: getStrings(m, "account_required"),
	}
}

func getBool(m protoreflect.Message, name protoreflect.Name) *bool {
	fd := m.Descriptor().Fields().ByName(name)
	if !m.Has(fd) {
		return nil
	}
	b := m.Get(fd).Bool()
	return &b
}

func getStrings(m protoreflect.Message, name protoreflect.Name) []string {
	list := m.Get(m.Descriptor().Fields().ByName(name)).List()
	if list.Len() == 0 {
		return nil
	}
	out := make([]string, list.Len())
	for i := range out {
		out[i] = list.Get(i).String()
	}
	return out
}
