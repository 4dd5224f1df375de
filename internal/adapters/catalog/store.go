// Package catalog is the storefront's product source: an in-memory store of
// the current catalog, snapshot files, and a random catalog generator.
package catalog

import (
	"sync"
	"time"

	"github.com/okian/storefront/internal/domain/product"
	"github.com/okian/storefront/pkg/metrics"
)

// Store holds the current product catalog. Readers always get a copy.
type Store struct {
	mu        sync.RWMutex
	products  []product.Product
	version   uint64
	updatedAt time.Time
}

// NewStore creates a store seeded with products.
func NewStore(products []product.Product) *Store {
	s := &Store{}
	s.Replace(products)
	return s
}

// Replace swaps the whole catalog and returns the new version.
func (s *Store) Replace(products []product.Product) uint64 {
	cp := cloneAll(products)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cp
	s.version++
	s.updatedAt = time.Now()
	metrics.UpdateCatalogProducts(len(cp))
	return s.version
}

// All returns a copy of every product in catalog order.
func (s *Store) All() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.products)
}

// Count returns the number of products.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Version increments on every Replace.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// UpdatedAt returns the time of the last Replace.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func cloneAll(products []product.Product) []product.Product {
	out := make([]product.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
