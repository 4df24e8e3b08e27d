// Package event defines the timestamped event carried on every stream and
// the reconstruction of its millisecond timestamp on the consumer side.
//
// Two wire encodings exist for the seconds component: the local producer
// sends seconds as decimal text, the third-party feed sends a native
// integer. A Stamp records which one it holds so decoding never has to
// guess by attempting a parse and falling back.
package event

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

const nanosPerSecond = 1_000_000_000

var (
	// ErrMalformedSeconds is returned when text-encoded seconds are not a valid integer.
	ErrMalformedSeconds = errors.New("event: malformed seconds")
	// ErrNanosOutOfRange is returned when nanos is outside [0, 1e9).
	ErrNanosOutOfRange = errors.New("event: nanos out of range")
	// ErrOverflow is returned when the timestamp does not fit in int64 milliseconds.
	ErrOverflow = errors.New("event: timestamp overflows milliseconds")
)

// Event is an absolute point in time as (seconds, nanos) since the Unix epoch.
type Event struct {
	Seconds int64
	Nanos   int32
}

// FromTime builds an Event from t.
func FromTime(t time.Time) Event {
	return Event{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Validate checks 0 <= Nanos < 1e9.
func (e Event) Validate() error {
	if e.Nanos < 0 || e.Nanos >= nanosPerSecond {
		return fmt.Errorf("%w: %d", ErrNanosOutOfRange, e.Nanos)
	}
	return nil
}

// Time returns e as a time.Time.
func (e Event) Time() time.Time { return time.Unix(e.Seconds, int64(e.Nanos)) }

// UnixMilli returns seconds*1000 + nanos/1e6, truncating sub-millisecond precision.
func (e Event) UnixMilli() (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if e.Seconds > math.MaxInt64/1000 || e.Seconds < math.MinInt64/1000 {
		return 0, fmt.Errorf("%w: seconds=%d", ErrOverflow, e.Seconds)
	}
	return e.Seconds*1000 + int64(e.Nanos)/1_000_000, nil
}

// TextStamp encodes e with decimal text seconds, the local producer's wire form.
func (e Event) TextStamp() Stamp {
	return TextStamp(strconv.FormatInt(e.Seconds, 10), e.Nanos)
}

// NativeStamp encodes e with integer seconds, the feed's wire form.
func (e Event) NativeStamp() Stamp { return NativeStamp(e.Seconds, e.Nanos) }

// Encoding tags how a Stamp carries its seconds.
type Encoding uint8

const (
	EncodingNative Encoding = iota
	EncodingText
)

func (e Encoding) String() string {
	switch e {
	case EncodingNative:
		return "native"
	case EncodingText:
		return "text"
	}
	return "unknown"
}

// Stamp is a received timestamp before decoding.
type Stamp struct {
	encoding Encoding
	native   int64
	text     string
	nanos    int32
}

// TextStamp returns a Stamp whose seconds arrived as decimal text.
func TextStamp(seconds string, nanos int32) Stamp {
	return Stamp{encoding: EncodingText, text: seconds, nanos: nanos}
}

// NativeStamp returns a Stamp whose seconds arrived as an integer.
func NativeStamp(seconds int64, nanos int32) Stamp {
	return Stamp{encoding: EncodingNative, native: seconds, nanos: nanos}
}

func (s Stamp) Encoding() Encoding { return s.encoding }
func (s Stamp) Nanos() int32       { return s.nanos }

// SecondsText returns the raw text seconds; empty for native stamps.
func (s Stamp) SecondsText() string {
	if s.encoding != EncodingText {
		return ""
	}
	return s.text
}

// Event decodes s according to its encoding.
func (s Stamp) Event() (Event, error) {
	var ev Event
	switch s.encoding {
	case EncodingNative:
		ev = Event{Seconds: s.native, Nanos: s.nanos}
	case EncodingText:
		sec, err := strconv.ParseInt(s.text, 10, 64)
		if err != nil {
			return Event{}, fmt.Errorf("%w: %q", ErrMalformedSeconds, s.text)
		}
		ev = Event{Seconds: sec, Nanos: s.nanos}
	default:
		return Event{}, fmt.Errorf("event: unknown encoding %d", s.encoding)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// UnixMilli decodes s and returns its millisecond timestamp.
func (s Stamp) UnixMilli() (int64, error) {
	ev, err := s.Event()
	if err != nil {
		return 0, err
	}
	return ev.UnixMilli()
}
