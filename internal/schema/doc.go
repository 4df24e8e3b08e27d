// Package schema holds the wire schemas for the two streams this tool
// measures, built as descriptors at init time and used through dynamicpb.
//
// local.TimeProducer/StreamTimes is the producer's own server-streaming
// call. Its TimeMessage carries seconds as decimal text.
//
// geyser.Geyser/Subscribe is the subset of the Yellowstone feed needed to
// subscribe and to read update kinds, slots and created_at. Update kinds
// not declared here survive as unknown fields and decode as kind "other".
package schema
