package behavior

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps names to trees so one node graph can be registered once and
// shared by every runner created from it. It is safe for concurrent use.
type Registry[C any] struct {
	mu    sync.RWMutex
	nodes map[string]Node[C]
}

func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{nodes: make(map[string]Node[C])}
}

// Register adds n under name. Names are unique.
func (r *Registry[C]) Register(name string, n Node[C]) error {
	if name == "" {
		return fmt.Errorf("%w: registry: empty name", ErrInvalidConfiguration)
	}
	if isNil(n) {
		return fmt.Errorf("%w: registry: node %q is nil", ErrInvalidConfiguration, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[name]; exists {
		return fmt.Errorf("%w: %s", ErrNodeAlreadyExists, name)
	}
	r.nodes[name] = n
	return nil
}

// Lookup returns the node registered under name.
func (r *Registry[C]) Lookup(name string) (Node[C], error) {
	r.mu.RLock()
	n, ok := r.nodes[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return n, nil
}

// Unregister removes name and reports whether it was present. Runners
// already built from the node keep using it.
func (r *Registry[C]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.nodes[name]
	delete(r.nodes, name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry[C]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// NewRunner builds a runner for the tree registered under name.
func (r *Registry[C]) NewRunner(name string, opts ...Option) (*Runner[C], error) {
	n, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewRunner(RunnerConfig[C]{Tree: n}, opts...)
}
