package feed

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"

	"github.com/rzbill/streamlat/internal/schema"
)

func TestParseCommitment(t *testing.T) {
	tests := []struct {
		in   string
		want Commitment
		err  bool
	}{
		{"processed", CommitmentProcessed, false},
		{"", CommitmentProcessed, false},
		{"Confirmed", CommitmentConfirmed, false},
		{" finalized ", CommitmentFinalized, false},
		{"rooted", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCommitment(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Fatalf("ParseCommitment(%q)=%v,%v", tt.in, got, err)
		}
	}
	if CommitmentFinalized.String() != "finalized" {
		t.Fatalf("String=%s", CommitmentFinalized)
	}
}

func TestAllAccounts(t *testing.T) {
	r := AllAccounts(DefaultFilterName)
	if len(r.Accounts) != 1 {
		t.Fatalf("accounts=%v", r.Accounts)
	}
	f, ok := r.Accounts[DefaultFilterName]
	if !ok || len(f.Account) != 0 || len(f.Owner) != 0 || len(f.Filters) != 0 {
		t.Fatalf("filter must be empty: %+v", f)
	}
	if r.Commitment == nil || *r.Commitment != CommitmentProcessed {
		t.Fatalf("commitment=%v", r.Commitment)
	}
}

func TestBuilderRejectsDuplicateNames(t *testing.T) {
	_, err := NewBuilder().
		Accounts("a", AccountsFilter{}).
		Slots("a", SlotsFilter{}).
		Build()
	if !errors.Is(err, ErrDuplicateFilter) {
		t.Fatalf("err=%v", err)
	}
	_, err = NewBuilder().Transactions("", TransactionsFilter{}).Build()
	if !errors.Is(err, ErrEmptyFilterName) {
		t.Fatalf("err=%v", err)
	}
}

func TestRequestProtoRoundTrip(t *testing.T) {
	vote, sig, size := false, true, uint64(165)
	req, err := NewBuilder().
		Accounts("tokens", AccountsFilter{
			Owner: []string{"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"},
			Filters: []AccountDataFilter{
				{DataSize: &size},
				{Memcmp: &Memcmp{Offset: 32, Base58: "11111111111111111111111111111111"}},
			},
			NonemptyTxnSignature: &sig,
		}).
		Slots("slots", SlotsFilter{}).
		Transactions("txs", TransactionsFilter{Vote: &vote, AccountInclude: []string{"a", "b"}}).
		Commitment(CommitmentConfirmed).
		FromSlot(1000).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := proto.Marshal(req.Proto())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m := schema.NewSubscribeRequest()
	if err := proto.Unmarshal(b, m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := RequestFromProto(m)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, req) {
		t.Fatalf("round trip mismatch\n got=%+v\nwant=%+v", got, req)
	}
	if names := got.FilterNames(); !reflect.DeepEqual(names, []string{"slots", "tokens", "txs"}) {
		t.Fatalf("names=%v", names)
	}
}

func TestUnsetCommitmentIsOmitted(t *testing.T) {
	m := SubscribeRequest{Accounts: map[string]AccountsFilter{"x": {}}}.Proto()
	if m.Has(m.Descriptor().Fields().ByName("commitment")) {
		t.Fatalf("commitment should be absent")
	}
	r := AllAccounts("x").Proto()
	if !r.Has(r.Descriptor().Fields().ByName("commitment")) {
		t.Fatalf("explicit processed commitment must be present")
	}
}

func TestTokenDecorator(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    []string
		wantErr error
	}{
		{"none", "", nil, nil},
		{"valid", "secret-123", []string{"secret-123"}, nil},
		{"newline", "bad\ntoken", nil, ErrInvalidToken},
		{"non-ascii", "tökén", nil, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := TokenDecorator(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want %v", err, tt.wantErr)
			}
			in := metadata.Pairs("other", "v")
			out := d(in)
			if got := out.Get(TokenHeader); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("x-token=%v want %v", got, tt.want)
			}
			if len(in.Get(TokenHeader)) != 0 {
				t.Fatalf("decorator mutated its input")
			}
			if out.Get("other")[0] != "v" {
				t.Fatalf("existing metadata lost")
			}
		})
	}
}

func TestChainSkipsNil(t *testing.T) {
	tok, _ := TokenDecorator("t")
	tag := func(md metadata.MD) metadata.MD {
		out := md.Copy()
		out.Set("x-tag", "1")
		return out
	}
	out := Chain(nil, tok, tag)(nil)
	if out.Get(TokenHeader)[0] != "t" || out.Get("x-tag")[0] != "1" {
		t.Fatalf("md=%v", out)
	}
}

func TestInterceptorsDecorateOutgoingContext(t *testing.T) {
	d, _ := TokenDecorator("abc")
	var seen metadata.MD

	unary := UnaryInterceptor(d)
	err := unary(context.Background(), "/m", nil, nil, nil,
		func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
			seen, _ = metadata.FromOutgoingContext(ctx)
			return nil
		})
	if err != nil || seen.Get(TokenHeader)[0] != "abc" {
		t.Fatalf("unary md=%v err=%v", seen, err)
	}

	stream := StreamInterceptor(d)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "k", "v")
	_, err = stream(ctx, &grpc.StreamDesc{}, nil, "/s",
		func(ctx context.Context, _ *grpc.StreamDesc, _ *grpc.ClientConn, _ string, _ ...grpc.CallOption) (grpc.ClientStream, error) {
			seen, _ = metadata.FromOutgoingContext(ctx)
			return nil, nil
		})
	if err != nil || seen.Get(TokenHeader)[0] != "abc" || seen.Get("k")[0] != "v" {
		t.Fatalf("stream md=%v err=%v", seen, err)
	}

	// Without a token the context passes through untouched.
	passthrough := StreamInterceptor(Identity)
	_, _ = passthrough(context.Background(), &grpc.StreamDesc{}, nil, "/s",
		func(ctx context.Context, _ *grpc.StreamDesc, _ *grpc.ClientConn, _ string, _ ...grpc.CallOption) (grpc.ClientStream, error) {
			_, ok := metadata.FromOutgoingContext(ctx)
			if ok {
				t.Fatalf("metadata attached without a token")
			}
			return nil, nil
		})
}
