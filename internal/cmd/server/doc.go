// Package serverrun exposes the shared Run entrypoint used by the CLI to
// start the time producer: the gRPC server and, when configured, the ops
// HTTP server, handling lifecycle and shutdown.
//
// Example:
//
//	cfg := config.Default()
//	cfg.Producer.MetricsAddr = "127.0.0.1:9464"
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, serverrun.Options{Config: cfg, Logger: logger})
package serverrun
