package runtime

import (
	"context"
	"errors"
	goruntime "runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	cfgpkg "github.com/rzbill/streamlat/internal/config"
	"github.com/rzbill/streamlat/internal/metrics"
	logpkg "github.com/rzbill/streamlat/pkg/log"
)

// ErrClosed is returned by CheckHealth after Close.
var ErrClosed = errors.New("runtime closed")

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
	// Registry defaults to metrics.NewRegistry().
	Registry *prometheus.Registry
	// Workers overrides Config.Runtime.Workers when positive.
	Workers int
}

// Runtime holds the process-wide dependencies.
type Runtime struct {
	config   cfgpkg.Config
	logger   logpkg.Logger
	registry *prometheus.Registry
	closed   atomic.Bool
	closing  chan struct{}
}

// Open validates the config, applies the scheduler width and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	reg := opts.Registry
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	workers := opts.Config.Runtime.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	if workers > 0 {
		prev := goruntime.GOMAXPROCS(workers)
		logger.Debug("scheduler width set", logpkg.Int("workers", workers), logpkg.Int("previous", prev))
	}
	return &Runtime{config: opts.Config, logger: logger, registry: reg, closing: make(chan struct{})}, nil
}

// Close marks the runtime closed. Long-running services watch Done.
func (r *Runtime) Close() error {
	if r.closed.CompareAndSwap(false, true) {
		close(r.closing)
	}
	return nil
}

// Done is closed by Close.
func (r *Runtime) Done() <-chan struct{} { return r.closing }

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the process logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// Registry returns the metrics registry served on /metrics.
func (r *Runtime) Registry() *prometheus.Registry { return r.registry }
