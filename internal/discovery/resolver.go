// Package discovery resolves backend base URLs by logical service name.
package discovery

import "github.com/pkg/errors"

type Resolver interface {
	ServiceURL(serviceName string) (string, error)
}

// StaticResolver serves fixed URLs; used when Consul is disabled and in tests.
type StaticResolver map[string]string

var _ Resolver = StaticResolver{}

func (r StaticResolver) ServiceURL(serviceName string) (string, error) {
	url, ok := r[serviceName]
	if !ok {
		return "", errors.Errorf("no URL configured for %s", serviceName)
	}
	return url, nil
}
