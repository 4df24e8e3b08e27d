// Package transport connects consumers to a producer or to a Geyser feed
// and adapts their response streams to consumer.Source.
//
// Each client sends exactly one request and then only reads. Connection
// failures are wrapped with ErrConnect; a stream cancelled through its own
// context ends like a normal end of stream.
package transport
