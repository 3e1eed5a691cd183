package catalog

import (
	"sort"
	"strconv"

	"catalog-service/internal/models"
)

// Pure derivations over a catalog snapshot. None of these mutate the
// snapshot or return an error; bad input degrades to an empty result.

// FilterByID restricts the snapshot to categories containing the product
// with the given identifier, each list narrowed to the single match.
// Non-numeric input yields an empty mapping, never an error.
func FilterByID(snap models.CatalogSnapshot, raw string) map[string][]models.Product {
	result := make(map[string][]models.Product)
	if raw == "" {
		return result
	}

	id, err := strconv.Atoi(raw)
	if err != nil {
		return result
	}

	for _, cat := range snap.Categories {
		for _, p := range snap.Products[cat] {
			if p.ID == id {
				result[cat] = append(result[cat], p)
			}
		}
	}
	return result
}

// Arrival is one entry of the recency ranking: a product tagged with its
// owning category.
type Arrival struct {
	Category string         `json:"category"`
	Product  models.Product `json:"product"`
}

// NewArrivals flattens all (category, product) pairs and returns the k most
// recently updated, newest first. Products without a timestamp sort as
// oldest. The sort is stable with flattening order as the tiebreak, so
// re-invocation on an unchanged snapshot returns the same sequence.
func NewArrivals(snap models.CatalogSnapshot, k int) []Arrival {
	if k <= 0 {
		return []Arrival{}
	}

	flat := make([]Arrival, 0)
	for _, cat := range snap.Categories {
		for _, p := range snap.Products[cat] {
			flat = append(flat, Arrival{Category: cat, Product: p})
		}
	}

	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Product.UpdatedAt.After(flat[j].Product.UpdatedAt)
	})

	if k < len(flat) {
		flat = flat[:k]
	}
	return flat
}

// ActiveListing returns the product list for one category verbatim, empty
// if the category is absent.
func ActiveListing(snap models.CatalogSnapshot, category string) []models.Product {
	list, ok := snap.Products[category]
	if !ok {
		return []models.Product{}
	}
	return list
}

// FindProduct locates a product by id anywhere in the snapshot, returning
// its owning category.
func FindProduct(snap models.CatalogSnapshot, id int) (models.Product, string, bool) {
	for _, cat := range snap.Categories {
		for _, p := range snap.Products[cat] {
			if p.ID == id {
				return p, cat, true
			}
		}
	}
	return models.Product{}, "", false
}
