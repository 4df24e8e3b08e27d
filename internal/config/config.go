package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rzbill/streamlat/internal/feed"
	"github.com/rzbill/streamlat/internal/queue"
	"github.com/rzbill/streamlat/internal/transport"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"github.com/spf13/viper"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
	Producer ProducerConfig `mapstructure:"producer"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level      string   `mapstructure:"level"`
	Format     string   `mapstructure:"format"`
	RedactKeys []string `mapstructure:"redact_keys"`
	// Outputs defaults to stderr when empty.
	Outputs []LogOutputConfig `mapstructure:"outputs"`
	// SampleThereafter > 0 keeps the first SampleInitial debug and info
	// lines per message, then every SampleThereafter-th.
	SampleInitial    int  `mapstructure:"sample_initial"`
	SampleThereafter int  `mapstructure:"sample_thereafter"`
	ShowCaller       bool `mapstructure:"show_caller"`
}

// LogOutputConfig is one log destination: console, file or null.
type LogOutputConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// RuntimeConfig tunes the Go scheduler.
type RuntimeConfig struct {
	// Workers sets GOMAXPROCS; 0 leaves the Go default.
	Workers int `mapstructure:"workers"`
}

// ProducerConfig configures `producer start`.
type ProducerConfig struct {
	Listen        string `mapstructure:"listen"`
	QueueCapacity int    `mapstructure:"queue_capacity"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
}

// ConsumerConfig configures measurement on both consumer commands.
type ConsumerConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
	SlowFilter     string        `mapstructure:"slow_filter"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
}

// FeedConfig configures `consumer feed`.
type FeedConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	XToken     string `mapstructure:"x_token"`
	Commitment string `mapstructure:"commitment"`
	FilterName string `mapstructure:"filter_name"`
}

// DefaultConsumerWorkers is the scheduler width consumer commands use when
// runtime.workers is unset.
const DefaultConsumerWorkers = 4

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text", RedactKeys: []string{"x_token", "x-token"}},
		Producer: ProducerConfig{
			Listen:        "[::1]:50071",
			QueueCapacity: queue.DefaultCapacity,
		},
		Consumer: ConsumerConfig{
			Endpoint:       "http://[::1]:50071",
			ReportInterval: time.Second,
		},
		Feed: FeedConfig{
			Endpoint:   "http://127.0.0.1:10000",
			Commitment: feed.CommitmentProcessed.String(),
			FilterName: feed.DefaultFilterName,
		},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.redact_keys", d.Log.RedactKeys)
	v.SetDefault("log.sample_initial", d.Log.SampleInitial)
	v.SetDefault("log.sample_thereafter", d.Log.SampleThereafter)
	v.SetDefault("log.show_caller", d.Log.ShowCaller)
	v.SetDefault("runtime.workers", d.Runtime.Workers)
	v.SetDefault("producer.listen", d.Producer.Listen)
	v.SetDefault("producer.queue_capacity", d.Producer.QueueCapacity)
	v.SetDefault("producer.metrics_addr", d.Producer.MetricsAddr)
	v.SetDefault("consumer.endpoint", d.Consumer.Endpoint)
	v.SetDefault("consumer.report_interval", d.Consumer.ReportInterval)
	v.SetDefault("consumer.slow_filter", d.Consumer.SlowFilter)
	v.SetDefault("consumer.metrics_addr", d.Consumer.MetricsAddr)
	v.SetDefault("feed.endpoint", d.Feed.Endpoint)
	v.SetDefault("feed.x_token", d.Feed.XToken)
	v.SetDefault("feed.commitment", d.Feed.Commitment)
	v.SetDefault("feed.filter_name", d.Feed.FilterName)
}

// Load reads configuration from path (JSON, YAML or TOML by extension),
// overlays the environment and validates. An empty path searches
// SearchPaths() for streamlat.* and falls back to defaults when none exists.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("streamlat")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if _, err := logpkg.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	for i, o := range c.Log.Outputs {
		switch strings.ToLower(o.Type) {
		case "", "console", "null":
		case "file":
			if o.Path == "" {
				errs = append(errs, fmt.Errorf("log.outputs[%d]: file output requires a path", i))
			}
		default:
			errs = append(errs, fmt.Errorf("log.outputs[%d].type %q: want console, file or null", i, o.Type))
		}
	}
	if c.Log.SampleInitial < 0 || c.Log.SampleThereafter < 0 {
		errs = append(errs, errors.New("log.sample_initial and log.sample_thereafter must be >= 0"))
	}
	if c.Runtime.Workers < 0 {
		errs = append(errs, fmt.Errorf("runtime.workers must be >= 0, got %d", c.Runtime.Workers))
	}
	if c.Producer.QueueCapacity <= 0 {
		errs = append(errs, fmt.Errorf("producer.queue_capacity must be > 0, got %d", c.Producer.QueueCapacity))
	}
	if c.Consumer.ReportInterval <= 0 {
		errs = append(errs, fmt.Errorf("consumer.report_interval must be > 0, got %s", c.Consumer.ReportInterval))
	}
	if _, err := transport.ParseEndpoint(c.Consumer.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("consumer.endpoint: %w", err))
	}
	if _, err := transport.ParseEndpoint(c.Feed.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("feed.endpoint: %w", err))
	}
	if _, err := feed.ParseCommitment(c.Feed.Commitment); err != nil {
		errs = append(errs, fmt.Errorf("feed.commitment: %w", err))
	}
	if c.Feed.FilterName == "" {
		errs = append(errs, errors.New("feed.filter_name must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LoggerConfig returns the pkg/log configuration.
func (c Config) LoggerConfig() *logpkg.Config {
	outputs := make([]logpkg.OutputConfig, len(c.Log.Outputs))
	for i, o := range c.Log.Outputs {
		outputs[i] = logpkg.OutputConfig{Type: strings.ToLower(o.Type), Path: o.Path}
	}
	return &logpkg.Config{
		Level:            c.Log.Level,
		Format:           strings.ToLower(c.Log.Format),
		Outputs:          outputs,
		RedactKeys:       c.Log.RedactKeys,
		SampleInitial:    c.Log.SampleInitial,
		SampleThereafter: c.Log.SampleThereafter,
		ShowCaller:       c.Log.ShowCaller,
	}
}
