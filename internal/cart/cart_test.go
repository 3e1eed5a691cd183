package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStorage is an in-process Storage double. Raw payloads can be
// planted directly to simulate corruption.
type memoryStorage struct {
	values map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{values: make(map[string][]byte)}
}

func (m *memoryStorage) Load(session string) ([]models.CartItem, error) {
	raw, ok := m.values[session]
	if !ok {
		return nil, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.New("corrupt cart payload")
	}
	return items, nil
}

func (m *memoryStorage) Save(session string, items []models.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	m.values[session] = raw
	return nil
}

func (m *memoryStorage) Delete(session string) error {
	delete(m.values, session)
	return nil
}

func product(id int, mrp float64) models.Product {
	return models.Product{ID: id, Name: "Item", MRP: mrp, Dimension: "6x3", Units: "ft"}
}

func TestAddIncrementsExistingLine(t *testing.T) {
	engine := NewEngine(newMemoryStorage(), "s1")

	engine.Add(product(101, 500))
	engine.Add(product(101, 500))
	engine.Add(product(102, 300))

	items := engine.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestAdjustFloorsAtOne(t *testing.T) {
	engine := NewEngine(newMemoryStorage(), "s1")
	engine.Add(product(101, 500))
	engine.Adjust(101, 4)
	assert.Equal(t, 5, engine.Items()[0].Quantity)

	engine.Adjust(101, -10)
	// Decrement never zeroes a line; removal is explicit.
	require.Len(t, engine.Items(), 1)
	assert.Equal(t, 1, engine.Items()[0].Quantity)

	// Unknown id is a no-op.
	engine.Adjust(999, 1)
	assert.Equal(t, 1, engine.Len())
}

func TestRemoveIsUnconditional(t *testing.T) {
	engine := NewEngine(newMemoryStorage(), "s1")
	engine.Add(product(101, 500))
	engine.Adjust(101, 7)

	engine.Remove(101)
	assert.Zero(t, engine.Len())

	engine.Remove(101)
	assert.Zero(t, engine.Len())
}

func TestTotalChargesMRP(t *testing.T) {
	engine := NewEngine(newMemoryStorage(), "s1")

	offer := 450.0
	p1 := product(1, 500)
	p1.OfferPrice = &offer
	engine.Add(p1)
	engine.Adjust(1, 1)
	engine.Add(product(2, 300))

	// MRP is the charged price, by design; the offer price is ignored.
	assert.Equal(t, 1300.0, engine.Total())
}

func TestSnapshotIsolation(t *testing.T) {
	engine := NewEngine(newMemoryStorage(), "s1")

	p := product(101, 500)
	p.Images = []string{"a.jpg"}
	engine.Add(p)

	// Catalog edits after add must not reach the cart line.
	p.Name = "Renamed"
	p.MRP = 9999
	p.Images[0] = "b.jpg"

	item := engine.Items()[0]
	assert.Equal(t, "Item", item.Name)
	assert.Equal(t, 500.0, item.MRP)
	assert.Equal(t, "a.jpg", item.Images[0])
}

func TestPersistenceRoundTrip(t *testing.T) {
	storage := newMemoryStorage()

	engine := NewEngine(storage, "s1")
	engine.Add(product(101, 500))
	engine.Add(product(101, 500))
	engine.Add(product(102, 300))

	// A fresh engine over the same storage sees the identical cart.
	rehydrated := NewEngine(storage, "s1")
	assert.Equal(t, engine.Items(), rehydrated.Items())
	assert.Equal(t, engine.Total(), rehydrated.Total())
}

func TestCorruptPersistedCartDegradesToEmpty(t *testing.T) {
	storage := newMemoryStorage()
	storage.values["s1"] = []byte("{definitely not a cart")

	engine := NewEngine(storage, "s1")
	assert.Zero(t, engine.Len())

	// The engine stays usable after degrading.
	engine.Add(product(101, 500))
	assert.Equal(t, 1, engine.Len())
}

func TestClearDeletesPersistedCopy(t *testing.T) {
	storage := newMemoryStorage()
	engine := NewEngine(storage, "s1")
	engine.Add(product(101, 500))
	require.Contains(t, storage.values, "s1")

	engine.Clear()
	assert.Zero(t, engine.Len())
	assert.NotContains(t, storage.values, "s1")
}

func TestSessionsAreIsolated(t *testing.T) {
	storage := newMemoryStorage()

	a := NewEngine(storage, "a")
	a.Add(product(101, 500))

	b := NewEngine(storage, "b")
	assert.Zero(t, b.Len())
}

func TestBoltStorageRoundTrip(t *testing.T) {
	storage, err := NewBoltStorage(t.TempDir() + "/carts.db")
	require.NoError(t, err)
	defer storage.Close()

	engine := NewEngine(storage, "s1")
	engine.Add(product(101, 500))
	engine.Adjust(101, 2)

	rehydrated := NewEngine(storage, "s1")
	require.Equal(t, 1, rehydrated.Len())
	assert.Equal(t, 3, rehydrated.Items()[0].Quantity)

	rehydrated.Clear()
	items, err := storage.Load("s1")
	require.NoError(t, err)
	assert.Nil(t, items)
}
