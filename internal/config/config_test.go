package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logpkg "github.com/rzbill/streamlat/pkg/log"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Producer.Listen != "[::1]:50071" {
		t.Fatalf("listen=%s", cfg.Producer.Listen)
	}
	if cfg.Producer.QueueCapacity != 1024 {
		t.Fatalf("queue capacity=%d", cfg.Producer.QueueCapacity)
	}
	if cfg.Consumer.Endpoint != "http://[::1]:50071" || cfg.Consumer.ReportInterval != time.Second {
		t.Fatalf("consumer=%+v", cfg.Consumer)
	}
	if cfg.Feed.Endpoint != "http://127.0.0.1:10000" || cfg.Feed.FilterName != "slot_account_updates" || cfg.Feed.Commitment != "processed" {
		t.Fatalf("feed=%+v", cfg.Feed)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadFiles(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"json", "streamlat.json", `{"producer":{"queue_capacity":64},"consumer":{"report_interval":"250ms"},"feed":{"commitment":"confirmed"}}`},
		{"yaml", "streamlat.yaml", "producer:\n  queue_capacity: 64\nconsumer:\n  report_interval: 250ms\nfeed:\n  commitment: confirmed\n"},
		{"toml", "streamlat.toml", "[producer]\nqueue_capacity = 64\n[consumer]\nreport_interval = \"250ms\"\n[feed]\ncommitment = \"confirmed\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Producer.QueueCapacity != 64 {
				t.Fatalf("queue capacity=%d", cfg.Producer.QueueCapacity)
			}
			if cfg.Consumer.ReportInterval != 250*time.Millisecond {
				t.Fatalf("interval=%s", cfg.Consumer.ReportInterval)
			}
			if cfg.Feed.Commitment != "confirmed" {
				t.Fatalf("commitment=%s", cfg.Feed.Commitment)
			}
			// Untouched keys keep their defaults.
			if cfg.Producer.Listen != "[::1]:50071" {
				t.Fatalf("listen=%s", cfg.Producer.Listen)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Feed.FilterName != "slot_account_updates" {
		t.Fatalf("filter name=%s", cfg.Feed.FilterName)
	}
}

func TestFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STREAMLAT_CONSUMER_ENDPOINT", "https://feed.example.com")
	t.Setenv("STREAMLAT_FEED_X_TOKEN", "tok")
	t.Setenv("STREAMLAT_CONSUMER_REPORT_INTERVAL", "2s")
	t.Setenv("STREAMLAT_RUNTIME_WORKERS", "8")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Consumer.Endpoint != "https://feed.example.com" {
		t.Fatalf("endpoint=%s", cfg.Consumer.Endpoint)
	}
	if cfg.Feed.XToken != "tok" {
		t.Fatalf("x_token=%s", cfg.Feed.XToken)
	}
	if cfg.Consumer.ReportInterval != 2*time.Second {
		t.Fatalf("interval=%s", cfg.Consumer.ReportInterval)
	}
	if cfg.Runtime.Workers != 8 {
		t.Fatalf("workers=%d", cfg.Runtime.Workers)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Producer.QueueCapacity = 0
	cfg.Feed.Commitment = "rooted"
	cfg.Consumer.Endpoint = "ftp://x:1"
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"queue_capacity", "feed.commitment", "consumer.endpoint", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "JSON"
	lc := cfg.LoggerConfig()
	if lc.Format != "json" || lc.Level != "info" {
		t.Fatalf("logger config=%+v", lc)
	}
	if len(lc.RedactKeys) == 0 {
		t.Fatalf("x_token must be redacted by default")
	}
}

func TestLogOutputsAndSampling(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "streamlat.log")
	body := "log:\n" +
		"  format: text\n" +
		"  sample_initial: 2\n" +
		"  sample_thereafter: 100\n" +
		"  outputs:\n" +
		"    - type: file\n" +
		"      path: " + logFile + "\n"
	path := filepath.Join(dir, "streamlat.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	lc := cfg.LoggerConfig()
	if len(lc.Outputs) != 1 || lc.Outputs[0].Type != "file" || lc.Outputs[0].Path != logFile {
		t.Fatalf("outputs=%+v", lc.Outputs)
	}
	if lc.SampleInitial != 2 || lc.SampleThereafter != 100 {
		t.Fatalf("sampling=%d/%d", lc.SampleInitial, lc.SampleThereafter)
	}

	logger, err := logpkg.ApplyConfig(lc)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	for i := 0; i < 5; i++ {
		logger.Info("tick", logpkg.Str("x_token", "secret"))
	}
	logger.Warn("slow sample")
	b, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	// Lines 0 and 1 pass as initial, line 2 as the first of each 100.
	if n := strings.Count(out, "tick"); n != 3 {
		t.Fatalf("sampled lines=%d\n%s", n, out)
	}
	if !strings.Contains(out, "slow sample") {
		t.Fatalf("warnings must not be sampled\n%s", out)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("x_token not redacted\n%s", out)
	}
}

func TestValidateLogOutputs(t *testing.T) {
	tests := []struct {
		name    string
		outputs []LogOutputConfig
		sample  int
		want    string
	}{
		{"file without path", []LogOutputConfig{{Type: "file"}}, 0, "log.outputs[0]"},
		{"unknown type", []LogOutputConfig{{Type: "console"}, {Type: "syslog"}}, 0, "log.outputs[1].type"},
		{"negative sampling", nil, -1, "log.sample_initial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Log.Outputs = tt.outputs
			cfg.Log.SampleThereafter = tt.sample
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err=%v want %q", err, tt.want)
			}
		})
	}
}
