package grpcserver

import (
	"fmt"
	"log/slog"
	"net"

	"records-service/common/metrics"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check name probes use for the records API.
const ServiceName = "records.v1.RecordsService"

// Server exposes the standard gRPC health service for cluster probes.
type Server struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func New(m *metrics.Metrics, logger *slog.Logger) *Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(m.Grpc.UnaryServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	s := &Server{
		server: server,
		health: healthServer,
		logger: logger,
	}
	s.SetServing(true)
	return s
}

// SetServing flips the overall and records service status.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *Server) ListenAndServe(port string) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	s.logger.Info("gRPC server starting", "port", port)
	return s.Serve(lis)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
