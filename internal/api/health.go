package api

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewHealthServer registers a gRPC health service on gs. The simulation
// service starts NOT_SERVING until a Session reports in.
func NewHealthServer(gs *grpc.Server) *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	if gs != nil {
		healthpb.RegisterHealthServer(gs, hs)
	}
	return hs
}
