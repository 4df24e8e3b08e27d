// Package grpcserver hosts the producer's gRPC server. It registers the
// local.TimeProducer stream and the standard gRPC health service, and
// delegates each subscription to the time service.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default(), Logger: logger})
//	s := grpcserver.New(rt)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, "[::1]:50071")
package grpcserver
