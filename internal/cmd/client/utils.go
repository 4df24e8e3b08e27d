package client

import (
	"context"
	"fmt"
	"time"

	cfgpkg "github.com/rzbill/streamlat/internal/config"
	"github.com/rzbill/streamlat/internal/consumer"
	"github.com/rzbill/streamlat/internal/metrics"
	"github.com/rzbill/streamlat/internal/runtime"
	httpserver "github.com/rzbill/streamlat/internal/server/http"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Env is the process configuration resolved by the root command.
type Env struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// EnvFunc resolves Env when a command runs, after flags are parsed.
type EnvFunc func() (Env, error)

// measureFlags registers the flags shared by both consumer commands.
func measureFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", 0, "Throughput report interval (default consumer.report_interval, 1s)")
	cmd.Flags().String("slow", "", "CEL expression; matching samples are logged as warnings")
	cmd.Flags().String("metrics-addr", "", "Serve /metrics and /v1/healthz on this address")
}

// stringFlag returns the flag value when set on the command line, def otherwise.
func stringFlag(cmd *cobra.Command, name, def string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return def
}

func durationFlag(cmd *cobra.Command, name string, def time.Duration) time.Duration {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetDuration(name)
		return v
	}
	return def
}

// openFunc opens the stream to measure. ctx ends when measurement stops.
type openFunc func(ctx context.Context, rt *runtime.Runtime) (consumer.Source, error)

// measure runs one consumer loop over the stream returned by open, reporting
// to the command's stdout, the runtime's metrics and the slow-sample filter.
func measure(cmd *cobra.Command, env Env, open openFunc) error {
	cfg := env.Config
	interval := durationFlag(cmd, "interval", cfg.Consumer.ReportInterval)
	if interval <= 0 {
		return fmt.Errorf("--interval must be > 0, got %s", interval)
	}
	slow := stringFlag(cmd, "slow", cfg.Consumer.SlowFilter)
	metricsAddr := stringFlag(cmd, "metrics-addr", cfg.Consumer.MetricsAddr)

	workers := cfg.Runtime.Workers
	if workers == 0 {
		workers = cfgpkg.DefaultConsumerWorkers
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: env.Logger, Workers: workers})
	if err != nil {
		return err
	}
	defer rt.Close()

	rep, err := consumer.NewSlowReporter(slow, consumer.Reporters{
		consumer.NewConsoleReporter(cmd.OutOrStdout()),
		metrics.NewConsumer(rt.Registry()),
	}, rt.Logger())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		hsrv := httpserver.New(rt)
		g.Go(func() error {
			if err := hsrv.ListenAndServe(gctx, metricsAddr); err != nil {
				return fmt.Errorf("consumer: http %s: %w", metricsAddr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		src, err := open(gctx, rt)
		if err != nil {
			rt.Logger().Error("connect failed", logpkg.Err(err))
			return err
		}
		return consumer.Run(src, rep, consumer.WithInterval(interval))
	})
	return g.Wait()
}
