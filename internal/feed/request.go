package feed

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultFilterName labels the single all-accounts filter.
const DefaultFilterName = "slot_account_updates"

var (
	// ErrDuplicateFilter is returned when a filter name is used twice in one request.
	ErrDuplicateFilter = errors.New("feed: duplicate filter name")
	// ErrEmptyFilterName is returned for a filter without a name.
	ErrEmptyFilterName = errors.New("feed: empty filter name")
)

// Commitment is the feed's finality tier for reported state.
type Commitment int32

const (
	CommitmentProcessed Commitment = iota
	CommitmentConfirmed
	CommitmentFinalized
)

func (c Commitment) String() string {
	switch c {
	case CommitmentProcessed:
		return "processed"
	case CommitmentConfirmed:
		return "confirmed"
	case CommitmentFinalized:
		return "finalized"
	}
	return fmt.Sprintf("commitment(%d)", int32(c))
}

// ParseCommitment accepts processed, confirmed or finalized.
func ParseCommitment(s string) (Commitment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "processed":
		return CommitmentProcessed, nil
	case "confirmed":
		return CommitmentConfirmed, nil
	case "finalized":
		return CommitmentFinalized, nil
	}
	return 0, fmt.Errorf("feed: unknown commitment %q (want processed|confirmed|finalized)", s)
}

// Memcmp matches account data at Offset. Exactly one of Bytes, Base58 or
// Base64 should be set; Bytes wins when several are.
type Memcmp struct {
	Offset uint64
	Bytes  []byte
	Base58 string
	Base64 string
}

// AccountDataFilter narrows account updates by content. Set one field.
type AccountDataFilter struct {
	Memcmp            *Memcmp
	DataSize          *uint64
	TokenAccountState *bool
}

// AccountsFilter selects account updates. Empty lists match all accounts.
type AccountsFilter struct {
	Account              []string
	Owner                []string
	Filters              []AccountDataFilter
	NonemptyTxnSignature *bool
}

// SlotsFilter selects slot updates.
type SlotsFilter struct {
	FilterByCommitment *bool
}

// TransactionsFilter selects transaction updates.
type TransactionsFilter struct {
	Vote            *bool
	Failed          *bool
	Signature       string
	AccountInclude  []string
	AccountExclude  []string
	AccountRequired []string
}

// SubscribeRequest declares which updates a subscription receives.
type SubscribeRequest struct {
	Accounts     map[string]AccountsFilter
	Slots        map[string]SlotsFilter
	Transactions map[string]TransactionsFilter
	// Commitment is omitted from the wire message when nil.
	Commitment *Commitment
	FromSlot   *uint64
}

// FilterNames returns every filter name in the request, sorted.
func (r SubscribeRequest) FilterNames() []string {
	var names []string
	for n := range r.Accounts {
		names = append(names, n)
	}
	for n := range r.Slots {
		names = append(names, n)
	}
	for n := range r.Transactions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AllAccounts is the request for every account update under one filter,
// at the least strict commitment.
func AllAccounts(name string) SubscribeRequest {
	c := CommitmentProcessed
	return SubscribeRequest{
		Accounts:   map[string]AccountsFilter{name: {}},
		Commitment: &c,
	}
}

// Builder assembles a SubscribeRequest. Filter names are unique across all
// categories; the first error sticks and is returned by Build.
type Builder struct {
	req   SubscribeRequest
	names map[string]struct{}
	err   error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{names: map[string]struct{}{}}
}

func (b *Builder) claim(name string) bool {
	if b.err != nil {
		return false
	}
	if name == "" {
		b.err = ErrEmptyFilterName
		return false
	}
	if _, dup := b.names[name]; dup {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateFilter, name)
		return false
	}
	b.names[name] = struct{}{}
	return true
}

// Accounts adds an accounts filter.
func (b *Builder) Accounts(name string, f AccountsFilter) *Builder {
	if b.claim(name) {
		if b.req.Accounts == nil {
			b.req.Accounts = map[string]AccountsFilter{}
		}
		b.req.Accounts[name] = f
	}
	return b
}

// Slots adds a slots filter.
func (b *Builder) Slots(name string, f SlotsFilter) *Builder {
	if b.claim(name) {
		if b.req.Slots == nil {
			b.req.Slots = map[string]SlotsFilter{}
		}
		b.req.Slots[name] = f
	}
	return b
}

// Transactions adds a transactions filter.
func (b *Builder) Transactions(name string, f TransactionsFilter) *Builder {
	if b.claim(name) {
		if b.req.Transactions == nil {
			b.req.Transactions = map[string]TransactionsFilter{}
		}
		b.req.Transactions[name] = f
	}
	return b
}

// Commitment sets the commitment level.
func (b *Builder) Commitment(c Commitment) *Builder {
	b.req.Commitment = &c
	return b
}

// FromSlot asks the feed to replay from slot.
func (b *Builder) FromSlot(slot uint64) *Builder {
	b.req.FromSlot = &slot
	return b
}

// Build returns the request, or the first error recorded.
func (b *Builder) Build() (SubscribeRequest, error) {
	if b.err != nil {
		return SubscribeRequest{}, b.err
	}
	return b.req, nil
}
