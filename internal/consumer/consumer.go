package consumer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rzbill/streamlat/internal/clock"
	"github.com/rzbill/streamlat/internal/event"
)

// DefaultInterval is the throughput reporting window.
const DefaultInterval = time.Second

// Item kinds.
const (
	KindTime        = "time"
	KindAccount     = "account"
	KindSlot        = "slot"
	KindTransaction = "transaction"
	KindBlock       = "block"
	KindBlockMeta   = "block_meta"
	KindEntry       = "entry"
	KindPing        = "ping"
	KindPong        = "pong"
	KindOther       = "other"
)

// Item is one decoded stream element.
type Item struct {
	Stamp event.Stamp
	Kind  string
	// Slot is the feed slot the update belongs to, zero when not applicable.
	Slot uint64
}

// Source yields stream items. Recv returns io.EOF at the end of the stream.
type Source interface {
	Recv() (Item, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (Item, error)

func (f SourceFunc) Recv() (Item, error) { return f() }

// Sample is one latency measurement.
type Sample struct {
	Seq       uint64
	Kind      string
	Slot      uint64
	EventMs   int64
	NowMs     int64
	LatencyMs int64
}

// Skewed reports whether the event is stamped later than it was received,
// which only happens when the producer's clock runs ahead of ours.
func (s Sample) Skewed() bool { return s.LatencyMs < 0 }

// Window is the throughput count over one reporting interval.
type Window struct {
	Count uint64
	Start time.Time
	End   time.Time
}

// Elapsed is the window length.
func (w Window) Elapsed() time.Duration { return w.End.Sub(w.Start) }

// Reporter receives measurements from Run.
type Reporter interface {
	Latency(Sample)
	Throughput(Window)
	StreamError(error)
}

type options struct {
	interval time.Duration
	clock    clock.Clock
}

// Option configures Run.
type Option func(*options)

// WithInterval sets the throughput window. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithClock sets the clock used for latency and windows.
func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// Run consumes src until it ends. End of stream returns nil; a transport
// error or an undecodable timestamp is reported and returned.
func Run(src Source, rep Reporter, opts ...Option) error {
	o := options{interval: DefaultInterval, clock: clock.System{}}
	for _, fn := range opts {
		fn(&o)
	}

	var (
		count       uint64
		seq         uint64
		windowStart = o.clock.Now()
	)
	for {
		it, err := src.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			err = fmt.Errorf("consumer: stream: %w", err)
			rep.StreamError(err)
			return err
		}

		eventMs, err := it.Stamp.UnixMilli()
		if err != nil {
			err = fmt.Errorf("consumer: item %d: %w", seq+1, err)
			rep.StreamError(err)
			return err
		}
		count++
		seq++
		nowMs := clock.NowMs(o.clock)
		rep.Latency(Sample{
			Seq:       seq,
			Kind:      it.Kind,
			Slot:      it.Slot,
			EventMs:   eventMs,
			NowMs:     nowMs,
			LatencyMs: nowMs - eventMs,
		})

		if o.clock.Since(windowStart) >= o.interval {
			now := o.clock.Now()
			rep.Throughput(Window{Count: count, Start: windowStart, End: now})
			count = 0
			windowStart = now
		}
	}
}
