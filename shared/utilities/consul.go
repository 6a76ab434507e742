package utilities

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// ConsulConfig holds service-registration settings. An empty Addr disables registration.
type ConsulConfig struct {
	Addr        string `env:"ADDR"`
	ServiceID   string `env:"SERVICE_ID"   envDefault:"learning-service-1"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"learning-service"`
	// AdvertiseHost is the host other services and the health checker use to reach this instance.
	AdvertiseHost string `env:"ADVERTISE_HOST" envDefault:"127.0.0.1"`
}

// Enabled reports whether a Consul agent address is configured.
func (c ConsulConfig) Enabled() bool {
	return c.Addr != ""
}

// ServiceRegistry registers a single service instance with a Consul agent.
type ServiceRegistry struct {
	client *api.Client
	cfg    ConsulConfig
}

// NewServiceRegistry creates a Consul client for the configured agent.
func NewServiceRegistry(cfg ConsulConfig) (*ServiceRegistry, error) {
	consulCfg := api.DefaultConfig()
	consulCfg.Address = cfg.Addr

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &ServiceRegistry{client: client, cfg: cfg}, nil
}

// Register announces the HTTP port of this instance and attaches a gRPC health
// check against healthAddr.
func (r *ServiceRegistry) Register(httpAddr, healthAddr string) error {
	port, err := portOf(httpAddr)
	if err != nil {
		return err
	}

	healthPort, err := portOf(healthAddr)
	if err != nil {
		return err
	}

	registration := &api.AgentServiceRegistration{
		ID:      r.cfg.ServiceID,
		Name:    r.cfg.ServiceName,
		Address: r.cfg.AdvertiseHost,
		Port:    port,
		Tags:    []string{"http"},
		Check: &api.AgentServiceCheck{
			GRPC:                           net.JoinHostPort(r.cfg.AdvertiseHost, strconv.Itoa(healthPort)),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	return r.client.Agent().ServiceRegister(registration)
}

// Deregister removes this instance from Consul.
func (r *ServiceRegistry) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.cfg.ServiceID)
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("parse port %q: %w", portStr, err)
	}

	return port, nil
}
