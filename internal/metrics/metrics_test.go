package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rzbill/streamlat/internal/consumer"
)

func TestProducerObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProducer(reg)
	a := p.Subscribed()
	b := p.Subscribed()
	for i := 0; i < 3; i++ {
		a.Sent()
	}
	b.Sent()
	a.Terminated(3)

	if got := testutil.ToFloat64(p.events); got != 4 {
		t.Fatalf("events=%v", got)
	}
	if got := testutil.ToFloat64(p.active); got != 1 {
		t.Fatalf("active=%v", got)
	}
	if got := testutil.ToFloat64(p.disconnects); got != 1 {
		t.Fatalf("disconnects=%v", got)
	}
}

func TestConsumerReporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewConsumer(reg)
	c.Latency(consumer.Sample{Kind: consumer.KindSlot, LatencyMs: 3})
	c.Latency(consumer.Sample{Kind: consumer.KindSlot, LatencyMs: -5})
	c.Latency(consumer.Sample{Kind: consumer.KindAccount, LatencyMs: 12})
	c.Throughput(consumer.Window{Count: 17})
	c.StreamError(errors.New("x"))

	if got := testutil.ToFloat64(c.events.WithLabelValues(consumer.KindSlot)); got != 2 {
		t.Fatalf("slot events=%v", got)
	}
	if got := testutil.ToFloat64(c.negative); got != 1 {
		t.Fatalf("negative=%v", got)
	}
	if got := testutil.ToFloat64(c.window); got != 17 {
		t.Fatalf("window=%v", got)
	}
	if got := testutil.ToFloat64(c.errors); got != 1 {
		t.Fatalf("errors=%v", got)
	}
	if n := testutil.CollectAndCount(c.latency); n != 2 {
		t.Fatalf("latency series=%d", n)
	}
}

func TestNewRegistryGathers(t *testing.T) {
	reg := NewRegistry()
	NewConsumer(reg)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("no metric families")
	}
}
