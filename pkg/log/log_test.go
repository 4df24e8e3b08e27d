package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, level Level, f Formatter) Logger {
	return NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", DebugLevel, false},
		{"", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"ERROR", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Fatalf("ParseLevel(%q) err=%v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q)=%v want %v", tt.in, got, tt.want)
		}
	}
}

func TestTextFormatterFieldsAndLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel, &TextFormatter{})
	l.Debug("hidden")
	l.With(Component("producer")).Info("listening", Str("addr", "[::1]:50071"), Int("queue", 1024))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
	for _, want := range []string{"INFO", "listening", "addr=[::1]:50071", "component=producer", "queue=1024"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestJSONFormatterWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, DebugLevel, &JSONFormatter{})
	l.WithError(errors.New("boom")).Error("stream failed")

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, buf.String())
	}
	if m["msg"] != "stream failed" || m["level"] != "ERROR" || m["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestSetLevelAppliesToDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	root := newBufferLogger(&buf, InfoLevel, &TextFormatter{})
	child := root.WithComponent("consumer")
	root.SetLevel(ErrorLevel)
	child.Warn("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	if child.GetLevel() != ErrorLevel {
		t.Fatalf("child level = %v", child.GetLevel())
	}
}

func TestApplyConfigRedactsKeys(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "info", Format: "text", Outputs: []OutputConfig{{Type: "null"}}, RedactKeys: []string{"x_token"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	bl := l.(*BaseLogger)
	bl.outputs = []Output{NewWriterOutput(&buf)}
	l.Info("dialing", Str("x_token", "secret"), Str("endpoint", "http://127.0.0.1:10000"))
	out := buf.String()
	if strings.Contains(out, "secret") || !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("token not redacted: %q", out)
	}
}

func TestApplyConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSamplerKeepsWarnings(t *testing.T) {
	s := newSampler(1, 3)
	allowed := 0
	for i := 0; i < 7; i++ {
		if s.allow(-4, "tick") {
			allowed++
		}
	}
	// first one, then every 3rd of the remaining 6
	if allowed != 3 {
		t.Fatalf("allowed=%d want 3", allowed)
	}
	if !s.allow(4, "tick") {
		t.Fatalf("warnings must not be sampled")
	}
}

func TestWriterAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, DebugLevel, &TextFormatter{})
	std := ToStdLogger(l, WarnLevel)
	std.Println("transport closing")
	if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "transport closing") {
		t.Fatalf("unexpected: %q", buf.String())
	}
}
