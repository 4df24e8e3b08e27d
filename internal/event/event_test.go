package event

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestUnixMilliTruncates(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want int64
	}{
		{"zero", Event{}, 0},
		{"sub-ms dropped", Event{Seconds: 1, Nanos: 999_999}, 1000},
		{"last ms of second", Event{Seconds: 1726833600, Nanos: 999_999_999}, 1726833600999},
		{"pre-epoch", Event{Seconds: -2, Nanos: 500_000_000}, -1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ev.UnixMilli()
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestUnixMilliMonotonic(t *testing.T) {
	seconds := []int64{-1, 0, 1, 1726833600}
	nanos := []int32{0, 1, 999_999, 1_000_000, 500_000_000, 999_999_999}
	var prev int64 = math.MinInt64
	for _, s := range seconds {
		for _, n := range nanos {
			ms, err := Event{Seconds: s, Nanos: n}.UnixMilli()
			if err != nil {
				t.Fatalf("(%d,%d): %v", s, n, err)
			}
			if ms < prev {
				t.Fatalf("not monotonic at (%d,%d): %d < %d", s, n, ms, prev)
			}
			prev = ms
		}
	}
}

func TestRoundTripFromClockReading(t *testing.T) {
	readings := []time.Time{
		time.Unix(1726833600, 123_456_789),
		time.Unix(0, 0),
		time.Unix(1726833600, 999_999_999),
		time.Now(),
	}
	for _, r := range readings {
		got, err := FromTime(r).TextStamp().UnixMilli()
		if err != nil {
			t.Fatalf("%v: %v", r, err)
		}
		if got != r.UnixMilli() {
			t.Fatalf("%v: got %d want %d", r, got, r.UnixMilli())
		}
		native, _ := FromTime(r).NativeStamp().UnixMilli()
		if native != got {
			t.Fatalf("encodings disagree: %d vs %d", native, got)
		}
	}
}

func TestMalformedTextSecondsFails(t *testing.T) {
	for _, text := range []string{"not-a-number", "", "12.5", " 12", "99999999999999999999"} {
		_, err := TextStamp(text, 0).UnixMilli()
		if !errors.Is(err, ErrMalformedSeconds) {
			t.Fatalf("%q: expected ErrMalformedSeconds, got %v", text, err)
		}
	}
}

func TestNanosOutOfRange(t *testing.T) {
	for _, n := range []int32{-1, 1_000_000_000, math.MaxInt32} {
		if _, err := NativeStamp(1, n).UnixMilli(); !errors.Is(err, ErrNanosOutOfRange) {
			t.Fatalf("nanos=%d: expected ErrNanosOutOfRange, got %v", n, err)
		}
	}
}

func TestOverflow(t *testing.T) {
	if _, err := (Event{Seconds: math.MaxInt64}).UnixMilli(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestStampEncodingIsExplicit(t *testing.T) {
	s := TextStamp("42", 7)
	if s.Encoding() != EncodingText || s.SecondsText() != "42" || s.Nanos() != 7 {
		t.Fatalf("unexpected stamp %+v", s)
	}
	n := NativeStamp(42, 7)
	if n.Encoding() != EncodingNative || n.SecondsText() != "" {
		t.Fatalf("unexpected stamp %+v", n)
	}
	a, _ := s.Event()
	b, _ := n.Event()
	if a != b {
		t.Fatalf("%v != %v", a, b)
	}
}
