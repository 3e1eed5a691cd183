package catalog

import (
	"testing"
	"time"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterByIDNonNumeric(t *testing.T) {
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101}},
	}, "SOFAS")

	for _, raw := range []string{"", "abc", "10x", "1.5"} {
		result := FilterByID(snap, raw)
		assert.NotNil(t, result, "input %q", raw)
		assert.Empty(t, result, "input %q", raw)
	}
}

func TestFilterByIDSingleMatch(t *testing.T) {
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101, Name: "Royal Sofa"}, {ID: 105}},
		"BEDS":  {{ID: 102}},
	}, "SOFAS", "BEDS")

	result := FilterByID(snap, "101")
	require.Len(t, result, 1)
	require.Len(t, result["SOFAS"], 1)
	assert.Equal(t, "Royal Sofa", result["SOFAS"][0].Name)

	assert.Empty(t, FilterByID(snap, "999"))
}

func TestFilterByIDAfterCategoryDeleted(t *testing.T) {
	store := NewStore(models.MinProductID)
	store.ApplySnapshot(snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101}},
		"BEDS":  {{ID: 102}},
	}, "SOFAS", "BEDS"))

	require.Len(t, FilterByID(store.Snapshot(), "101"), 1)

	// Category deleted upstream: its products must stop resolving even if
	// the id was seen before.
	store.ApplySnapshot(snapshotWith(map[string][]models.Product{
		"BEDS": {{ID: 102}},
	}, "BEDS"))

	assert.Empty(t, FilterByID(store.Snapshot(), "101"))
}

func TestNewArrivalsOrderAndLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d int) time.Time { return base.AddDate(0, 0, d) }

	snap := snapshotWith(map[string][]models.Product{
		"SOFAS":  {{ID: 101, UpdatedAt: at(1)}, {ID: 102, UpdatedAt: at(6)}},
		"BEDS":   {{ID: 103, UpdatedAt: at(3)}, {ID: 104}},
		"TABLES": {{ID: 105, UpdatedAt: at(5)}, {ID: 106, UpdatedAt: at(2)}, {ID: 107, UpdatedAt: at(4)}},
	}, "SOFAS", "BEDS", "TABLES")

	arrivals := NewArrivals(snap, 5)
	require.Len(t, arrivals, 5)

	ids := make([]int, len(arrivals))
	for i, a := range arrivals {
		ids[i] = a.Product.ID
	}
	assert.Equal(t, []int{102, 105, 107, 103, 106}, ids)
	assert.Equal(t, "SOFAS", arrivals[0].Category)

	// Product without a timestamp sorts as oldest and falls off the top 5.
	for _, a := range arrivals {
		assert.NotEqual(t, 104, a.Product.ID)
	}
}

func TestNewArrivalsStableOnUnchangedSnapshot(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101, UpdatedAt: ts}, {ID: 102, UpdatedAt: ts}},
		"BEDS":  {{ID: 103, UpdatedAt: ts}},
	}, "SOFAS", "BEDS")

	first := NewArrivals(snap, 5)
	second := NewArrivals(snap, 5)
	assert.Equal(t, first, second)

	// Ties resolve by flattening order.
	assert.Equal(t, 101, first[0].Product.ID)
	assert.Equal(t, 102, first[1].Product.ID)
	assert.Equal(t, 103, first[2].Product.ID)
}

func TestNewArrivalsFewerThanLimit(t *testing.T) {
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101}},
	}, "SOFAS")

	assert.Len(t, NewArrivals(snap, 5), 1)
	assert.Empty(t, NewArrivals(models.CatalogSnapshot{}, 5))
}

func TestNewArrivalsNonPositiveLimit(t *testing.T) {
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101}},
	}, "SOFAS")

	// A misconfigured limit must degrade to an empty result, not panic.
	assert.Empty(t, NewArrivals(snap, 0))
	assert.Empty(t, NewArrivals(snap, -3))
}

func TestActiveListing(t *testing.T) {
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 105}, {ID: 101}},
	}, "SOFAS")

	list := ActiveListing(snap, "SOFAS")
	require.Len(t, list, 2)
	assert.Equal(t, 105, list[0].ID)

	assert.Empty(t, ActiveListing(snap, "CHAIRS"))
}

func TestFindProduct(t *testing.T) {
	snap := snapshotWith(map[string][]models.Product{
		"SOFAS": {{ID: 101}},
		"BEDS":  {{ID: 102}},
	}, "SOFAS", "BEDS")

	p, cat, ok := FindProduct(snap, 102)
	require.True(t, ok)
	assert.Equal(t, "BEDS", cat)
	assert.Equal(t, 102, p.ID)

	_, _, ok = FindProduct(snap, 999)
	assert.False(t, ok)
}
