package consumer

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleReporter writes one line per measurement.
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleReporter returns a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) Latency(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Skewed() {
		_, _ = fmt.Fprintf(r.w, "Latency: %d ms (clock skew)\n", s.LatencyMs)
		return
	}
	_, _ = fmt.Fprintf(r.w, "Latency: %d ms\n", s.LatencyMs)
}

func (r *ConsoleReporter) Throughput(w Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "Throughput: %d messages/second\n", w.Count)
}

func (r *ConsoleReporter) StreamError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "Stream error: %v\n", err)
}

// Reporters fans every measurement out to each reporter in order.
type Reporters []Reporter

func (rs Reporters) Latency(s Sample) {
	for _, r := range rs {
		r.Latency(s)
	}
}

func (rs Reporters) Throughput(w Window) {
	for _, r := range rs {
		r.Throughput(w)
	}
}

func (rs Reporters) StreamError(err error) {
	for _, r := range rs {
		r.StreamError(err)
	}
}
