package discovery

import (
	"fmt"
	"net"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultHealthPath = "/health"

// ConsulClient registers the counter and spreads backend calls across the
// healthy instances Consul reports.
type ConsulClient struct {
	client    *api.Client
	fallbacks map[string]string
	next      atomic.Uint64
}

var _ Resolver = &ConsulClient{}

// ServiceConfig describes how the counter announces itself. Address is the
// host other services should dial; empty means the outbound interface.
type ServiceConfig struct {
	Name       string
	ID         string
	Address    string
	Port       int
	HealthPath string
	Tags       []string
	Meta       map[string]string
}

// NewConsulClient connects to the agent. fallbacks maps service names to the
// base URL used when Consul has no healthy instance.
func NewConsulClient(host string, port int, fallbacks map[string]string) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:%d", host, port)

	client, err := api.NewClient(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Consul client")
	}

	if _, err = client.Agent().Self(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Consul")
	}

	log.WithField("addr", config.Address).Info("connected to Consul")

	return &ConsulClient{client: client, fallbacks: fallbacks}, nil
}

// outboundIP is the address of the interface used for external traffic.
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// agentRegistration builds the agent payload for cfg advertised at addr.
func agentRegistration(cfg ServiceConfig, addr string) *api.AgentServiceRegistration {
	path := cfg.HealthPath
	if path == "" {
		path = defaultHealthPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: addr,
		Tags:    cfg.Tags,
		Meta:    cfg.Meta,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s%s", net.JoinHostPort(addr, fmt.Sprint(cfg.Port)), path),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// Register announces the counter with an HTTP health check.
func (c *ConsulClient) Register(cfg ServiceConfig) error {
	addr := cfg.Address
	if addr == "" {
		addr = outboundIP()
	}

	reg := agentRegistration(cfg, addr)
	if err := c.client.Agent().ServiceRegister(reg); err != nil {
		return errors.Wrap(err, "failed to register service")
	}

	log.WithFields(log.Fields{
		"service": cfg.Name,
		"id":      cfg.ID,
		"addr":    net.JoinHostPort(addr, fmt.Sprint(cfg.Port)),
		"check":   reg.Check.HTTP,
	}).Info("registered service")
	return nil
}

func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return errors.Wrap(err, "failed to deregister service")
	}

	log.WithField("id", serviceID).Info("deregistered service")
	return nil
}

// pickInstance returns the base URL of the n-th healthy instance, wrapping
// around the list.
func pickInstance(serviceName string, entries []*api.ServiceEntry, n uint64) (string, error) {
	if len(entries) == 0 {
		return "", errors.Errorf("no healthy instances of %s found", serviceName)
	}

	entry := entries[n%uint64(len(entries))]
	address := entry.Service.Address
	if address == "" && entry.Node != nil {
		address = entry.Node.Address
	}
	if address == "" {
		address = "localhost"
	}
	return "http://" + net.JoinHostPort(address, fmt.Sprint(entry.Service.Port)), nil
}

// ServiceURL resolves through Consul, rotating across healthy instances, and
// falls back to the static URL.
func (c *ConsulClient) ServiceURL(serviceName string) (string, error) {
	entries, _, err := c.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to get service")
	} else {
		var url string
		if url, err = pickInstance(serviceName, entries, c.next.Add(1)-1); err == nil {
			return url, nil
		}
	}

	if fallback, ok := c.fallbacks[serviceName]; ok {
		log.WithError(err).WithField("service", serviceName).Warn("Consul lookup failed, using fallback URL")
		return fallback, nil
	}
	return "", err
}
