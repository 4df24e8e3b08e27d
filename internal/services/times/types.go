package timesvc

import (
	"context"

	"github.com/rzbill/streamlat/internal/event"
)

// Sink is implemented by transports to receive streamed events.
type Sink interface {
	Send(event.Event) error
	Context() context.Context
}

// Subscription describes one active subscriber.
type Subscription struct {
	ID    string
	Queue int
	Sent  uint64
}
