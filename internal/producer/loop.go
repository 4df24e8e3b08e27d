package producer

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rzbill/streamlat/internal/clock"
	"github.com/rzbill/streamlat/internal/event"
	logpkg "github.com/rzbill/streamlat/pkg/log"
)

// State is a Loop's lifecycle state.
type State int32

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// Sender is the queue half the loop pushes into.
type Sender interface {
	Send(event.Event) error
}

// Observer is notified of loop progress. Implementations must be cheap;
// Sent is called once per event.
type Observer interface {
	Sent()
	Terminated(sent uint64)
}

type noopObserver struct{}

func (noopObserver) Sent()             {}
func (noopObserver) Terminated(uint64) {}

// Loop emits events into a Sender until a send fails.
type Loop struct {
	id       string
	tx       Sender
	clock    clock.Clock
	logger   logpkg.Logger
	observer Observer

	state atomic.Int32
	sent  atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

func WithClock(c clock.Clock) Option      { return func(l *Loop) { l.clock = c } }
func WithLogger(lg logpkg.Logger) Option  { return func(l *Loop) { l.logger = lg } }
func WithObserver(o Observer) Option      { return func(l *Loop) { l.observer = o } }
func WithSubscriptionID(id string) Option { return func(l *Loop) { l.id = id } }

// NewLoop returns a Running loop pushing into tx.
func NewLoop(tx Sender, opts ...Option) *Loop {
	l := &Loop{tx: tx, clock: clock.System{}, observer: noopObserver{}}
	for _, o := range opts {
		o(l)
	}
	if l.id == "" {
		l.id = NewSubscriptionID()
	}
	if l.logger == nil {
		l.logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	l.logger = l.logger.With(logpkg.Component("producer"), logpkg.SubscriptionID(l.id))
	return l
}

// NewSubscriptionID returns a time-ordered UUIDv7, or a random UUID when the
// v7 generator fails.
func NewSubscriptionID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// ID returns the subscription id.
func (l *Loop) ID() string { return l.id }

// State returns the current state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Sent returns how many events were accepted by the queue.
func (l *Loop) Sent() uint64 { return l.sent.Load() }

// Run blocks until the receiver is dropped. The disconnect is the normal
// end of a subscription and is not reported as an error.
func (l *Loop) Run() {
	if l.State() == Terminated {
		return
	}
	for {
		ev := event.FromTime(l.clock.Now())
		if err := l.tx.Send(ev); err != nil {
			l.state.Store(int32(Terminated))
			n := l.sent.Load()
			l.observer.Terminated(n)
			l.logger.Info("subscriber disconnected", logpkg.Uint64("events_sent", n), logpkg.Str("reason", err.Error()))
			return
		}
		l.sent.Add(1)
		l.observer.Sent()
	}
}
