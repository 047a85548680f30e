// Package health exposes gRPC health checking for the download service.
package health

import (
	"context"
	"net"
	"sync"
	"time"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// ServiceName is the health-checked service name besides the overall "" entry.
const ServiceName = "mediafetch.v1.Downloader"

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// Probe reports whether the service can do its job. A nil error means SERVING.
type Probe func() error

// Server is a gRPC server carrying only health and reflection services.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	probe  Probe
	logger zerolog.Logger
}

// NewGRPCServer creates a health server with Prometheus interceptors and reflection.
// The initial status comes from probe.
func NewGRPCServer(probe Probe) *Server {
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	// For tools like grpcurl
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	logger := config.GetLogger()
	s := &Server{
		grpc:   grpcServer,
		health: healthServer,
		probe:  probe,
		logger: logger.With().Str("component", "health").Logger(),
	}
	s.Refresh()
	return s
}

// Refresh re-runs the probe and publishes the resulting status.
func (s *Server) Refresh() {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if s.probe != nil {
		if err := s.probe(); err != nil {
			s.logger.Warn().Err(err).Msg("Health probe failed")
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch refreshes the status every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh()
		}
	}
}

// Serve accepts connections on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Shutdown reports NOT_SERVING to watchers and then stops gracefully.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
