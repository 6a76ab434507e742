package utilities

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency the service cannot serve without.
type HealthCheck func(ctx context.Context) error

// HealthServer is a gRPC server exposing only the standard health service.
// It lets orchestrators and Consul probe an HTTP-only service over gRPC.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	checks   []HealthCheck

	stopOnce sync.Once
	done     chan struct{}
}

// RegisterHealthServer registers the gRPC health check service.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

// NewHealthServer listens on addr and prepares a gRPC health server whose
// status follows checks.
func NewHealthServer(addr string, checks ...HealthCheck) (*HealthServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen grpc health %s: %w", addr, err)
	}

	server := grpc.NewServer()

	return &HealthServer{
		server:   server,
		health:   RegisterHealthServer(server),
		listener: lis,
		checks:   checks,
		done:     make(chan struct{}),
	}, nil
}

// Addr returns the address the server is listening on.
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks serving health checks until Stop is called.
func (s *HealthServer) Serve() error {
	return s.server.Serve(s.listener)
}

// Refresh runs every check once and publishes the result. The first failing
// check is returned and the service is reported as NOT_SERVING.
func (s *HealthServer) Refresh(ctx context.Context) error {
	for _, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			return err
		}
	}

	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return nil
}

// Watch refreshes the status every interval until Stop is called. onError is
// called with every failed refresh.
func (s *HealthServer) Watch(interval time.Duration, onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.Refresh(context.Background()); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// Stop marks the service as not serving and stops the server gracefully.
func (s *HealthServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.health.Shutdown()
		s.server.GracefulStop()
	})
}
