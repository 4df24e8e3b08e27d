package clock

import (
	"testing"
	"time"
)

func TestStampSplitsSecondsAndNanos(t *testing.T) {
	c := NewFake(time.Unix(1726833600, 123456789))
	s, n := Stamp(c)
	if s != 1726833600 || n != 123456789 {
		t.Fatalf("got (%d,%d)", s, n)
	}
	if NowMs(c) != 1726833600123 {
		t.Fatalf("NowMs=%d", NowMs(c))
	}
}

func TestFakeAdvance(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewFake(start)
	c.Advance(1500 * time.Millisecond)
	if got := c.Since(start); got != 1500*time.Millisecond {
		t.Fatalf("Since=%v", got)
	}
}
