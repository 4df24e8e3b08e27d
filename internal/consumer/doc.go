// Package consumer measures a stream of timestamped events.
//
// Run reads items from a Source in arrival order. Every item produces one
// latency Sample, reported immediately. After each item the loop checks the
// throughput window; once the interval has elapsed it reports the count for
// the window and starts a new one. Counters live inside Run, so concurrent
// consumers never share state.
//
// Reporters decide where measurements go: ConsoleReporter prints them,
// SlowReporter flags samples that match a CEL predicate, and Reporters fans
// out to several at once.
package consumer
