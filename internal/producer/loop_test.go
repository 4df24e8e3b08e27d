package producer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rzbill/streamlat/internal/clock"
	"github.com/rzbill/streamlat/internal/event"
	"github.com/rzbill/streamlat/internal/queue"
)

type countingObserver struct {
	sent       atomic.Uint64
	terminated atomic.Uint64
	final      atomic.Uint64
}

func (o *countingObserver) Sent() { o.sent.Add(1) }
func (o *countingObserver) Terminated(n uint64) {
	o.terminated.Add(1)
	o.final.Store(n)
}

func runAsync(l *Loop) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()
	return done
}

func TestLoopStampsFromClock(t *testing.T) {
	fc := clock.NewFake(time.Unix(1726833600, 250_000_000))
	tx, rx := queue.New[event.Event](4)
	l := NewLoop(tx, WithClock(fc), WithSubscriptionID("sub-1"))
	done := runAsync(l)

	ev, err := rx.Recv(context.Background())
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if ev.Seconds != 1726833600 || ev.Nanos != 250_000_000 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if l.ID() != "sub-1" {
		t.Fatalf("id=%s", l.ID())
	}
	rx.Close()
	<-done
}

func TestLoopTerminatesWhenReceiverDropped(t *testing.T) {
	tx, rx := queue.New[event.Event](queue.DefaultCapacity)
	obs := &countingObserver{}
	l := NewLoop(tx, WithObserver(obs))
	if l.State() != Running {
		t.Fatalf("initial state %v", l.State())
	}
	done := runAsync(l)

	// Let the queue fill so the loop is blocked in Send.
	deadline := time.Now().Add(2 * time.Second)
	for rx.Len() < rx.Cap() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	rx.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not terminate")
	}
	if l.State() != Terminated {
		t.Fatalf("state=%v", l.State())
	}
	if obs.terminated.Load() != 1 {
		t.Fatalf("terminated called %d times", obs.terminated.Load())
	}
	// Nothing is sent after the receiver is gone: exactly capacity accepted.
	if got := l.Sent(); got != uint64(queue.DefaultCapacity) {
		t.Fatalf("sent=%d want %d", got, queue.DefaultCapacity)
	}
	if obs.final.Load() != l.Sent() || obs.sent.Load() != l.Sent() {
		t.Fatalf("observer mismatch: sent=%d final=%d loop=%d", obs.sent.Load(), obs.final.Load(), l.Sent())
	}
}

func TestLoopReturnsImmediatelyOnClosedQueue(t *testing.T) {
	tx, rx := queue.New[event.Event](8)
	rx.Close()
	l := NewLoop(tx)
	l.Run()
	if l.Sent() != 0 || l.State() != Terminated {
		t.Fatalf("sent=%d state=%v", l.Sent(), l.State())
	}
	// A terminated loop does not restart.
	l.Run()
	if l.Sent() != 0 {
		t.Fatalf("restarted loop sent %d", l.Sent())
	}
}

// A slow drain throttles the producer: the queue stays bounded and the
// producer is never more than one queue ahead of the consumer.
func TestBackpressureThrottlesToDrainRate(t *testing.T) {
	const capacity = 64
	tx, rx := queue.New[event.Event](capacity)
	l := NewLoop(tx)
	done := runAsync(l)

	drained := 0
	for i := 0; i < 20; i++ {
		time.Sleep(2 * time.Millisecond)
		if rx.Len() > capacity {
			t.Fatalf("queue grew beyond capacity: %d", rx.Len())
		}
		if _, err := rx.Recv(context.Background()); err != nil {
			t.Fatalf("recv: %v", err)
		}
		drained++
	}
	sent := int(l.Sent())
	// Sent may include one in-flight accepted item beyond what is buffered.
	if sent > drained+capacity+1 {
		t.Fatalf("producer ran ahead: sent=%d drained=%d cap=%d", sent, drained, capacity)
	}
	if sent < drained {
		t.Fatalf("sent=%d < drained=%d", sent, drained)
	}
	rx.Close()
	<-done
}

func TestNewSubscriptionIDIsTimeOrdered(t *testing.T) {
	a, b := NewSubscriptionID(), NewSubscriptionID()
	if len(a) != 36 || a == b {
		t.Fatalf("ids %q %q", a, b)
	}
	if a > b {
		t.Fatalf("v7 ids out of order: %s > %s", a, b)
	}
	tx, rx := queue.New[event.Event](1)
	defer rx.Close()
	if id := NewLoop(tx).ID(); len(id) != 36 {
		t.Fatalf("default id=%q", id)
	}
}
