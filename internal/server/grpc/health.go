package grpcserver

import (
	"context"

	"github.com/rzbill/streamlat/internal/runtime"
	"github.com/rzbill/streamlat/internal/schema"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// registerHealth serves grpc.health.v1 for the whole server ("") and for
// local.TimeProducer, reflecting the runtime's health.
func registerHealth(gs *grpc.Server, rt *runtime.Runtime) *health.Server {
	hs := health.NewServer()
	status := healthpb.HealthCheckResponse_SERVING
	if err := rt.CheckHealth(context.Background()); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(schema.TimeProducerService, status)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}
