package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/producer"
)

const namespace = "streamlat"

// LatencyBuckets are the latency histogram bounds in milliseconds.
var LatencyBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Producer tracks producer loops.
type Producer struct {
	events      prometheus.Counter
	active      prometheus.Gauge
	disconnects prometheus.Counter
}

// NewProducer registers producer collectors with reg.
func NewProducer(reg prometheus.Registerer) *Producer {
	p := &Producer{
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "producer", Name: "events_total",
			Help: "Events accepted into subscription queues.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "producer", Name: "active_subscriptions",
			Help: "Subscriptions with a running producer loop.",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "producer", Name: "disconnects_total",
			Help: "Producer loops terminated by a dropped subscriber.",
		}),
	}
	reg.MustRegister(p.events, p.active, p.disconnects)
	return p
}

// Subscribed counts a new subscription and returns the observer for its loop.
func (p *Producer) Subscribed() producer.Observer {
	p.active.Inc()
	return producerObserver{p}
}

type producerObserver struct{ p *Producer }

func (o producerObserver) Sent() { o.p.events.Inc() }

func (o producerObserver) Terminated(uint64) {
	o.p.active.Dec()
	o.p.disconnects.Inc()
}

// Consumer records measurements. It implements consumer.Reporter.
type Consumer struct {
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
	window   prometheus.Gauge
	negative prometheus.Counter
	errors   prometheus.Counter
}

var _ consumer.Reporter = (*Consumer)(nil)

// NewConsumer registers consumer collectors with reg.
func NewConsumer(reg prometheus.Registerer) *Consumer {
	c := &Consumer{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "consumer", Name: "latency_ms",
			Help:    "Receive time minus event timestamp, in milliseconds.",
			Buckets: LatencyBuckets,
		}, []string{"kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "consumer", Name: "events_total",
			Help: "Events received.",
		}, []string{"kind"}),
		window: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "consumer", Name: "window_events",
			Help: "Events received in the last completed throughput window.",
		}),
		negative: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "consumer", Name: "negative_latency_total",
			Help: "Samples stamped later than received (clock skew).",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "consumer", Name: "stream_errors_total",
			Help: "Streams ended by an error.",
		}),
	}
	reg.MustRegister(c.latency, c.events, c.window, c.negative, c.errors)
	return c
}

// Latency counts every sample. Skewed samples are counted separately and
// kept out of the histogram.
func (c *Consumer) Latency(s consumer.Sample) {
	c.events.WithLabelValues(s.Kind).Inc()
	if s.Skewed() {
		c.negative.Inc()
		return
	}
	c.latency.WithLabelValues(s.Kind).Observe(float64(s.LatencyMs))
}

func (c *Consumer) Throughput(w consumer.Window) { c.window.Set(float64(w.Count)) }

func (c *Consumer) StreamError(error) { c.errors.Inc() }
