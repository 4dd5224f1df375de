package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/okian/storefront/internal/domain/compute"
	"golang.org/x/text/language"
)

// DefaultEnginePath is the entry point of the product compute engine.
const DefaultEnginePath = "workers/product"

// Factory starts a new engine instance.
type Factory func(ctx context.Context) (Engine, error)

// Registry resolves engine entry-point references to factories. It plays the
// role of the host environment locating an engine's code.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds path to f.
func (r *Registry) Register(path string, f Factory) error {
	path = strings.TrimSpace(path)
	if path == "" || f == nil {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[path]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePath, path)
	}
	r.factories[path] = f
	return nil
}

// Resolve returns the factory bound to path.
func (r *Registry) Resolve(path string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.TrimSpace(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEngineNotFound, path)
	}
	return f, nil
}

// Paths lists the registered entry points in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for p := range r.factories {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ProductFactory returns a Factory starting ProductEngines. Each engine gets
// its own Computer collating names in locale.
func ProductFactory(locale language.Tag, opts ...Option) Factory {
	return func(ctx context.Context) (Engine, error) {
		engineOpts := append([]Option{WithComputer(compute.New(compute.WithLocale(locale)))}, opts...)
		return Start(ctx, engineOpts...), nil
	}
}

// NewDefaultRegistry returns a registry with the product engine bound to
// DefaultEnginePath.
func NewDefaultRegistry(locale language.Tag, opts ...Option) *Registry {
	r := NewRegistry()
	_ = r.Register(DefaultEnginePath, ProductFactory(locale, opts...))
	return r
}
