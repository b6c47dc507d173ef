package agents

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var ErrUnknownAgent = errors.New("unknown agent")

// Selector resolves an agent by name.
type Selector interface {
	Lookup(name string) (Client, error)
}

// Registry holds the named agents. Names match exactly; a lookup for an
// unregistered name resolves to the fallback agent when one is configured.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client
	fallback string
}

type RegistryOption func(*Registry)

// WithFallback names the agent used when a lookup does not match.
func WithFallback(name string) RegistryOption {
	return func(r *Registry) { r.fallback = name }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{clients: map[string]Client{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

func (r *Registry) Lookup(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if client, ok := r.clients[name]; ok {
		return client, nil
	}
	if client, ok := r.clients[r.fallback]; ok && r.fallback != "" {
		return client, nil
	}

	if name == "" {
		return nil, fmt.Errorf("%w: no agent selected", ErrUnknownAgent)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
}

// Names returns the registered agent names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Endpoint describes an HTTP agent.
type Endpoint struct {
	Name    string
	URL     string
	Token   string
	Timeout time.Duration
}

// NewRegistryFromEndpoints builds a registry of [HTTPClient] agents.
func NewRegistryFromEndpoints(endpoints []Endpoint, opts ...RegistryOption) (*Registry, error) {
	registry := NewRegistry(opts...)
	for _, endpoint := range endpoints {
		if endpoint.Name == "" {
			return nil, fmt.Errorf("agent endpoint %q has no name", endpoint.URL)
		}
		client, err := NewHTTPClient(endpoint.Name, endpoint.URL,
			WithToken(endpoint.Token),
			WithTimeout(endpoint.Timeout))
		if err != nil {
			return nil, err
		}
		registry.Register(endpoint.Name, client)
	}

	if registry.fallback != "" {
		if _, ok := registry.clients[registry.fallback]; !ok {
			logger.Warn("fallback agent is not registered", "fallback", registry.fallback)
		}
	}
	return registry, nil
}
