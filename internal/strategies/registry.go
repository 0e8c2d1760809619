// Package strategies holds the built-in trading strategies and the registry
// the command line resolves strategy names through.
package strategies

import (
	"fmt"
	"sort"
	"sync"

	strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"
)

// Factory creates a fresh strategy instance for one run.
type Factory func() strategyv1.Strategy

// Registry maps strategy names to their factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named factory. Registering a name twice is an error, so a
// typo cannot silently shadow an existing strategy.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates the named strategy.
func (r *Registry) Create(name string) (strategyv1.Strategy, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown strategy %q, available: %v", name, r.Names())
	}
	return factory(), nil
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a registry with every built-in strategy registered.
func Default() *Registry {
	registry := NewRegistry()
	_ = registry.Register("idle", func() strategyv1.Strategy { return NewIdle() })
	_ = registry.Register("cross", func() strategyv1.Strategy { return NewCross() })
	return registry
}
