package serverrun

import (
	"context"
	"fmt"
	"net"

	cfgpkg "github.com/rzbill/streamlat/internal/config"
	"github.com/rzbill/streamlat/internal/runtime"
	grpcserver "github.com/rzbill/streamlat/internal/server/grpc"
	httpserver "github.com/rzbill/streamlat/internal/server/http"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
	// Listener, when set, is served instead of binding Config.Producer.Listen.
	Listener net.Listener
}

// Run starts the producer servers and blocks until ctx is cancelled or a
// server fails. A bind failure is returned as an error.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("starting producer",
		logpkg.Str("listen", cfg.Producer.Listen),
		logpkg.Int("queue_capacity", cfg.Producer.QueueCapacity),
		logpkg.Str("metrics", cfg.Producer.MetricsAddr),
	)

	gsrv := grpcserver.New(rt)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if opts.Listener != nil {
			return gsrv.Serve(gctx, opts.Listener)
		}
		if err := gsrv.ListenAndServe(gctx, cfg.Producer.Listen); err != nil {
			return fmt.Errorf("producer: grpc %s: %w", cfg.Producer.Listen, err)
		}
		return nil
	})

	if addr := cfg.Producer.MetricsAddr; addr != "" {
		hsrv := httpserver.New(rt, httpserver.WithSubscriptions(gsrv.Times()))
		g.Go(func() error {
			if err := hsrv.ListenAndServe(gctx, addr); err != nil {
				return fmt.Errorf("producer: http %s: %w", addr, err)
			}
			return nil
		})
	}

	err = g.Wait()
	// A failed sibling leaves the other server to stop on gctx; make sure
	// the grpc side is drained before the runtime goes away.
	gsrv.Close()
	return err
}
