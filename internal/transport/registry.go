// Package transport contains the chat platform adapters and their
// registry.
package transport

import (
	"fmt"
	"sort"

	"github.com/Veraticus/majordomo/internal/service"
)

// Registry holds the configured transports keyed by platform name.
type Registry struct {
	transports map[string]service.Transport
}

// NewRegistry creates an empty transport registry.
func NewRegistry() *Registry {
	return &Registry{transports: make(map[string]service.Transport)}
}

// Register adds a transport under its platform name. Later registrations
// replace earlier ones.
func (r *Registry) Register(t service.Transport) {
	r.transports[t.Name()] = t
}

// Get returns the transport registered under name.
func (r *Registry) Get(name string) (service.Transport, error) {
	t, ok := r.transports[name]
	if !ok {
		return nil, fmt.Errorf("no transport registered for platform %q", name)
	}
	return t, nil
}

// All returns every registered transport in stable name order.
func (r *Registry) All() []service.Transport {
	names := make([]string, 0, len(r.transports))
	for name := range r.transports {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]service.Transport, 0, len(names))
	for _, name := range names {
		all = append(all, r.transports[name])
	}
	return all
}
