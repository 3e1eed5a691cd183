package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrNotFound marks a lookup for a document that does not exist. Callers
// distinguish it from transient database failures with errors.Is.
var ErrNotFound = errors.New("not found")

// Store is the backing collection: one row per category document. Every
// write replaces the whole document; the database's single-row atomicity is
// the only concurrency guarantee (last writer wins).
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type categoryRow struct {
	Name      string    `db:"name"`
	Products  []byte    `db:"products"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewStore creates a new database store
func NewStore(databaseURL string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetCategoryDocs reads the entire collection. A row whose products payload
// is missing or malformed comes back with an empty product list instead of
// failing the whole read.
func (s *Store) GetCategoryDocs(ctx context.Context) ([]models.CategoryDoc, error) {
	var rows []categoryRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT name, products, updated_at FROM category_documents ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to read category documents: %w", err)
	}

	docs := make([]models.CategoryDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, s.decodeRow(r))
	}
	return docs, nil
}

// GetCategoryDoc reads a single category document, fresh. Read-modify-write
// callers use this rather than any cached projection.
func (s *Store) GetCategoryDoc(ctx context.Context, name string) (*models.CategoryDoc, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row,
		"SELECT name, products, updated_at FROM category_documents WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	doc := s.decodeRow(row)
	return &doc, nil
}

// PutCategoryDoc replaces the category's entire product list. The timestamp
// is server-assigned.
func (s *Store) PutCategoryDoc(ctx context.Context, name string, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO category_documents (name, products, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET products = $2, updated_at = NOW()`,
		name, payload)
	if err != nil {
		return fmt.Errorf("failed to write category document: %w", err)
	}
	return nil
}

// DeleteCategoryDoc deletes a category document. Embedded products go with
// it; there is nothing else to clean up.
func (s *Store) DeleteCategoryDoc(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM category_documents WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete category document: %w", err)
	}
	return nil
}

// GetContactSettings reads the contact settings document. A missing
// document is not an error: messaging is simply disabled.
func (s *Store) GetContactSettings(ctx context.Context) (models.ContactSettings, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		"SELECT value FROM settings WHERE key = 'contact'")
	if err == sql.ErrNoRows {
		return models.ContactSettings{}, nil
	}
	if err != nil {
		return models.ContactSettings{}, err
	}

	var settings models.ContactSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.Warn("Malformed contact settings document", zap.Error(err))
		return models.ContactSettings{}, nil
	}
	return settings, nil
}

// PutContactSettings replaces the contact settings document.
func (s *Store) PutContactSettings(ctx context.Context, settings models.ContactSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ('contact', $1)
		ON CONFLICT (key) DO UPDATE SET value = $1`,
		payload)
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func (s *Store) decodeRow(r categoryRow) models.CategoryDoc {
	doc := models.CategoryDoc{Name: r.Name, UpdatedAt: r.UpdatedAt}
	if len(r.Products) == 0 {
		doc.Products = []models.Product{}
		return doc
	}
	if err := json.Unmarshal(r.Products, &doc.Products); err != nil {
		s.logger.Warn("Malformed products payload, treating category as empty",
			zap.String("category", r.Name), zap.Error(err))
		doc.Products = []models.Product{}
	}
	if doc.Products == nil {
		doc.Products = []models.Product{}
	}
	return doc
}
