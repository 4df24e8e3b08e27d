package grpcserver

import (
	"context"
	"net"

	"github.com/rzbill/streamlat/internal/runtime"
	timesvc "github.com/rzbill/streamlat/internal/services/times"
	logpkg "github.com/rzbill/streamlat/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	times  *timesvc.Service
	health *health.Server
	grpc   *grpc.Server
	lis    net.Listener
}

// New constructs a gRPC server and registers services.
func New(rt *runtime.Runtime, opts ...grpc.ServerOption) *Server {
	s := &Server{rt: rt, times: timesvc.New(rt), grpc: grpc.NewServer(opts...)}
	registerTimeProducer(s.grpc, s.times)
	s.health = registerHealth(s.grpc, rt)
	return s
}

// Times exposes the time service for inspection.
func (s *Server) Times() *timesvc.Service { return s.times }

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.lis = l
	s.rt.Logger().Info("listening", logpkg.Component("grpc"), logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// stop flips health to NOT_SERVING, ends live subscriptions through the
// runtime and drains the server.
func (s *Server) stop() {
	s.health.Shutdown()
	_ = s.rt.Close()
	s.grpc.GracefulStop()
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.stop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
