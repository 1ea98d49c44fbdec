package health

import (
	"context"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported for the data source dependency.
const Service = "storefront.datasource"

type Prober interface {
	Ping(ctx context.Context) error
}

// Server serves the standard gRPC health protocol. The overall status
// follows whether the REST data source answers.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   log.FieldLogger
}

func NewServer(prober Prober, interval, timeout time.Duration, logger log.FieldLogger) *Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		grpc:     grpcServer,
		health:   healthServer,
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *Server) Health() healthpb.HealthServer {
	return s.health
}

// Probe checks the data source once and records the result.
func (s *Server) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.prober.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("data source unreachable")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(Service, status)
}

// Watch probes on every tick until ctx ends.
func (s *Server) Watch(ctx context.Context) {
	s.Probe(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
