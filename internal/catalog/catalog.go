package catalog

import (
	"sync"

	"catalog-service/internal/models"
	"catalog-service/internal/util"
)

// Store is the in-memory projection of the backing collection. It is fed
// whole snapshots by the live feed and read by every request path. Each
// snapshot replaces the previous state outright so deleted categories never
// linger.
type Store struct {
	mu         sync.RWMutex
	categories []string
	products   map[string][]models.Product
	minID      int
}

// NewStore creates an empty projection. minID is the identifier floor; the
// first product ever assigned gets minID+1.
func NewStore(minID int) *Store {
	return &Store{
		products: make(map[string][]models.Product),
		minID:    minID,
	}
}

// ApplySnapshot replaces the whole projection with the given snapshot.
// Callers may deliver overlapping or stale snapshots; applying is always
// safe because nothing is merged.
func (s *Store) ApplySnapshot(snap models.CatalogSnapshot) {
	categories := make([]string, len(snap.Categories))
	copy(categories, snap.Categories)

	products := make(map[string][]models.Product, len(snap.Products))
	for cat, list := range snap.Products {
		cp := make([]models.Product, len(list))
		copy(cp, list)
		products[cat] = cp
	}

	s.mu.Lock()
	s.categories = categories
	s.products = products
	s.mu.Unlock()

	util.CatalogSnapshotsApplied.Inc()
}

// Categories returns the category identifiers in snapshot iteration order.
// The order is not guaranteed stable across snapshots.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Products returns the product list for one category verbatim, empty if the
// category is absent.
func (s *Store) Products(category string) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.products[category]
	if !ok {
		return []models.Product{}
	}
	out := make([]models.Product, len(list))
	copy(out, list)
	return out
}

// HasCategory reports whether the category exists in the current snapshot.
func (s *Store) HasCategory(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.products[category]
	return ok
}

// MaxProductID scans every category's list and returns the highest product
// identifier seen, or the configured floor when the catalog is empty. It is
// recomputed on every call; it is only needed at write time and must reflect
// the freshest applied snapshot.
func (s *Store) MaxProductID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := s.minID
	for _, list := range s.products {
		for _, p := range list {
			if p.ID > max {
				max = p.ID
			}
		}
	}
	return max
}

// Snapshot returns a copy of the current projection for the query layer.
func (s *Store) Snapshot() models.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.CatalogSnapshot{
		Categories: make([]string, len(s.categories)),
		Products:   make(map[string][]models.Product, len(s.products)),
	}
	copy(snap.Categories, s.categories)
	for cat, list := range s.products {
		cp := make([]models.Product, len(list))
		copy(cp, list)
		snap.Products[cat] = cp
	}
	return snap
}
