// Package metrics defines the prometheus collectors for both sides of a
// measurement. Producer counts events and subscriptions; Consumer is a
// consumer.Reporter recording latency and throughput.
package metrics
