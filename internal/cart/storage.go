package cart

import (
	"encoding/json"
	"fmt"

	"catalog-service/internal/models"

	bolt "go.etcd.io/bbolt"
)

// Storage persists serialized carts keyed by session. One value per session;
// every save replaces the whole cart.
type Storage interface {
	Load(session string) ([]models.CartItem, error)
	Save(session string, items []models.CartItem) error
	Delete(session string) error
}

var cartsBucket = []byte("carts")

// BoltStorage is the durable local cart store. The file is exclusively
// owned by this process, never shared across sessions of other processes.
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens (or creates) the cart database file.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create carts bucket: %w", err)
	}

	return &BoltStorage{db: db}, nil
}

// Close closes the underlying database file.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// Load returns the persisted cart for a session, nil when none exists, or
// an error when the stored value does not deserialize.
func (s *BoltStorage) Load(session string) ([]models.CartItem, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(cartsBucket).Get([]byte(session))
		if v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("corrupt cart payload: %w", err)
	}
	return items, nil
}

// Save replaces the persisted cart for a session.
func (s *BoltStorage) Save(session string, items []models.CartItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Put([]byte(session), payload)
	})
}

// Delete removes the persisted cart for a session.
func (s *BoltStorage) Delete(session string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Delete([]byte(session))
	})
}
