package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/rzbill/streamlat/internal/cmd/client"
	serverrun "github.com/rzbill/streamlat/internal/cmd/server"
	cfgpkg "github.com/rzbill/streamlat/internal/config"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/grpclog"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "streamlat",
		Short:        "gRPC streaming latency and throughput benchmark",
		Long:         "streamlat runs a timestamp producer and consumers that measure per-event latency and per-second throughput over gRPC streams.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (json, yaml or toml); default searches ./, $XDG_CONFIG_HOME/streamlat, /etc/streamlat")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text|json")
	rootCmd.PersistentFlags().Int("workers", 0, "Scheduler width (GOMAXPROCS); consumers default to 4")

	env := func() (clientcmd.Env, error) { return loadEnv(rootCmd) }

	producerCmd := &cobra.Command{Use: "producer", Short: "Time producer commands"}
	startCmd := &cobra.Command{
		Use:     "start",
		Short:   "Serve the local.TimeProducer stream",
		Aliases: []string{"run"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := env()
			if err != nil {
				return err
			}
			cfg := e.Config
			if cmd.Flags().Changed("listen") {
				cfg.Producer.Listen, _ = cmd.Flags().GetString("listen")
			}
			if cmd.Flags().Changed("queue") {
				cfg.Producer.QueueCapacity, _ = cmd.Flags().GetInt("queue")
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Producer.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
			}
			if err := serverrun.Run(cmd.Context(), serverrun.Options{Config: cfg, Logger: e.Logger}); err != nil {
				return fmt.Errorf("producer error: %w", err)
			}
			return nil
		},
	}
	startCmd.Flags().String("listen", "", "gRPC listen address (default producer.listen, [::1]:50071)")
	startCmd.Flags().Int("queue", 0, "Per-subscriber queue capacity (default producer.queue_capacity, 1024)")
	startCmd.Flags().String("metrics-addr", "", "Serve /metrics, /v1/healthz and /v1/subscriptions on this address")
	producerCmd.AddCommand(startCmd)
	rootCmd.AddCommand(producerCmd)

	rootCmd.AddCommand(clientcmd.NewConsumerCommand(env))
	return rootCmd
}

// loadEnv resolves config from file and environment, applies the global
// flags and builds the process logger. gRPC and stdlib logs are routed
// through it.
func loadEnv(root *cobra.Command) (clientcmd.Env, error) {
	flags := root.PersistentFlags()
	path, _ := flags.GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return clientcmd.Env{}, err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("workers") {
		cfg.Runtime.Workers, _ = flags.GetInt("workers")
	}
	if err := cfg.Validate(); err != nil {
		return clientcmd.Env{}, err
	}

	logger, err := logpkg.ApplyConfig(cfg.LoggerConfig())
	if err != nil {
		return clientcmd.Env{}, err
	}
	logpkg.RedirectStdLog(logger)
	grpcLogger := logger.WithComponent("grpc")
	grpclog.SetLoggerV2(grpclog.NewLoggerV2(
		io.Discard,
		logpkg.NewWriter(grpcLogger, logpkg.WarnLevel),
		logpkg.NewWriter(grpcLogger, logpkg.ErrorLevel),
	))
	return clientcmd.Env{Config: cfg, Logger: logger}, nil
}
