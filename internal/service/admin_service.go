package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/models"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validation errors reported to the caller. Anything else coming out of the
// admin service is a generic wrapped store failure.
var (
	ErrEmptyCategoryName = errors.New("category name is empty")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrMissingFields     = errors.New("name, dimension, units and mrp are required")
)

// ChangePublisher announces catalog mutations to all live sessions.
type ChangePublisher interface {
	PublishCatalogChange(ctx context.Context, payload []byte) error
}

// DocumentStore is the slice of the backing collection the admin service
// writes through.
type DocumentStore interface {
	GetCategoryDoc(ctx context.Context, name string) (*models.CategoryDoc, error)
	PutCategoryDoc(ctx context.Context, name string, products []models.Product) error
	DeleteCategoryDoc(ctx context.Context, name string) error
}

// AdminService performs category and product mutations against the backing
// collection. Writes are whole-document replacements with no concurrency
// control: the most recent write silently wins.
type AdminService struct {
	store   DocumentStore
	catalog *catalog.Store
	changes ChangePublisher
	logger  *zap.Logger
}

// NewAdminService creates a new admin mutation service
func NewAdminService(st DocumentStore, cat *catalog.Store, changes ChangePublisher) *AdminService {
	return &AdminService{
		store:   st,
		catalog: cat,
		changes: changes,
		logger:  util.GetLogger(),
	}
}

// ProductInput carries the writable product fields of the admin form.
type ProductInput struct {
	Name        string   `json:"name"`
	Dimension   string   `json:"dimension"`
	Units       string   `json:"units"`
	MRP         float64  `json:"mrp"`
	OfferPrice  *float64 `json:"offerPrice"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Dimension) == "" ||
		strings.TrimSpace(in.Units) == "" ||
		in.MRP <= 0 {
		return ErrMissingFields
	}
	return nil
}

func (in *ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Dimension = strings.TrimSpace(in.Dimension)
	p.Units = strings.TrimSpace(in.Units)
	p.MRP = in.MRP
	p.OfferPrice = in.OfferPrice
	p.Description = strings.TrimSpace(in.Description)
	p.Images = in.Images
	p.UpdatedAt = time.Now()
}

// NormalizeCategory applies the category naming rule: trimmed, uppercase.
func NormalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AddCategory creates an empty category document. The duplicate check runs
// against the current projection, as the admin form does.
func (s *AdminService) AddCategory(ctx context.Context, name string) (string, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.AddCategory")
	defer span.End()

	normalized := NormalizeCategory(name)
	if normalized == "" {
		util.AdminWritesFailedTotal.WithLabelValues("validation").Inc()
		return "", ErrEmptyCategoryName
	}
	for _, existing := range s.catalog.Categories() {
		if existing == normalized {
			util.AdminWritesFailedTotal.WithLabelValues("validation").Inc()
			return "", ErrDuplicateCategory
		}
	}

	if err := s.store.PutCategoryDoc(ctx, normalized, []models.Product{}); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("store").Inc()
		return "", fmt.Errorf("add category failed: %w", err)
	}

	util.CategoriesWrittenTotal.WithLabelValues("add").Inc()
	s.logger.Info("Category created", zap.String("category", normalized))
	s.publishChange(ctx, models.EventTypeCategoryCreated, normalized)
	return normalized, nil
}

// DeleteCategory removes the category document and, with it, every embedded
// product.
func (s *AdminService) DeleteCategory(ctx context.Context, name string) error {
	ctx, span := util.StartSpan(ctx, "AdminService.DeleteCategory")
	defer span.End()

	normalized := NormalizeCategory(name)
	if normalized == "" {
		util.AdminWritesFailedTotal.WithLabelValues("validation").Inc()
		return ErrEmptyCategoryName
	}
	if err := s.store.DeleteCategoryDoc(ctx, normalized); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("store").Inc()
		return fmt.Errorf("delete category failed: %w", err)
	}

	util.CategoriesWrittenTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Category deleted", zap.String("category", normalized))
	s.publishChange(ctx, models.EventTypeCategoryDeleted, normalized)
	return nil
}

// AddProduct appends a new product to the category. The identifier is the
// global maximum across all categories plus one, scanned from the freshest
// projection. Two admin sessions racing this computation can mint the same
// id; there is no server-side arbitration.
func (s *AdminService) AddProduct(ctx context.Context, category string, input ProductInput) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.AddProduct")
	defer span.End()

	if err := input.validate(); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("validation").Inc()
		return models.Product{}, err
	}

	normalized := NormalizeCategory(category)
	doc, err := s.fetchCategoryDoc(ctx, normalized)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{ID: s.catalog.MaxProductID() + 1}
	input.apply(&product)

	updated := append(doc.Products, product)
	if err := s.store.PutCategoryDoc(ctx, normalized, updated); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("store").Inc()
		return models.Product{}, fmt.Errorf("add product failed: %w", err)
	}

	util.ProductsWrittenTotal.WithLabelValues("add").Inc()
	s.logger.Info("Product created",
		zap.String("category", normalized),
		zap.Int("product_id", product.ID))
	s.publishChange(ctx, models.EventTypeProductsUpdated, normalized)
	return product, nil
}

// UpdateProduct replaces the matching line item in place by identifier,
// preserving its position and id. The whole product list is written back
// against a fresh read of the document.
func (s *AdminService) UpdateProduct(ctx context.Context, category string, id int, input ProductInput) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.UpdateProduct")
	defer span.End()

	if err := input.validate(); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("validation").Inc()
		return models.Product{}, err
	}

	normalized := NormalizeCategory(category)
	doc, err := s.fetchCategoryDoc(ctx, normalized)
	if err != nil {
		return models.Product{}, err
	}

	idx := -1
	for i := range doc.Products {
		if doc.Products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		util.AdminWritesFailedTotal.WithLabelValues("not_found").Inc()
		return models.Product{}, ErrProductNotFound
	}

	input.apply(&doc.Products[idx])
	if err := s.store.PutCategoryDoc(ctx, normalized, doc.Products); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("store").Inc()
		return models.Product{}, fmt.Errorf("update product failed: %w", err)
	}

	util.ProductsWrittenTotal.WithLabelValues("update").Inc()
	s.logger.Info("Product updated",
		zap.String("category", normalized),
		zap.Int("product_id", id))
	s.publishChange(ctx, models.EventTypeProductsUpdated, normalized)
	return doc.Products[idx], nil
}

// DeleteProduct reads the category's current list, filters the id out and
// writes back the remainder.
func (s *AdminService) DeleteProduct(ctx context.Context, category string, id int) error {
	ctx, span := util.StartSpan(ctx, "AdminService.DeleteProduct")
	defer span.End()

	normalized := NormalizeCategory(category)
	doc, err := s.fetchCategoryDoc(ctx, normalized)
	if err != nil {
		return err
	}

	kept := make([]models.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(doc.Products) {
		util.AdminWritesFailedTotal.WithLabelValues("not_found").Inc()
		return ErrProductNotFound
	}

	if err := s.store.PutCategoryDoc(ctx, normalized, kept); err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("store").Inc()
		return fmt.Errorf("delete product failed: %w", err)
	}

	util.ProductsWrittenTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Product deleted",
		zap.String("category", normalized),
		zap.Int("product_id", id))
	s.publishChange(ctx, models.EventTypeProductsUpdated, normalized)
	return nil
}

// fetchCategoryDoc reads the category fresh for a read-modify-write. An
// empty name is a validation error and a missing document is not-found;
// anything else is a transient store failure and must not masquerade as
// either.
func (s *AdminService) fetchCategoryDoc(ctx context.Context, normalized string) (*models.CategoryDoc, error) {
	if normalized == "" {
		util.AdminWritesFailedTotal.WithLabelValues("validation").Inc()
		return nil, ErrEmptyCategoryName
	}

	doc, err := s.store.GetCategoryDoc(ctx, normalized)
	if errors.Is(err, store.ErrNotFound) {
		util.AdminWritesFailedTotal.WithLabelValues("not_found").Inc()
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		util.AdminWritesFailedTotal.WithLabelValues("store").Inc()
		return nil, fmt.Errorf("read category failed: %w", err)
	}
	return doc, nil
}

// publishChange is best-effort: a lost announcement only delays other
// sessions until the next one, so failures are logged and swallowed.
func (s *AdminService) publishChange(ctx context.Context, eventType, category string) {
	if s.changes == nil {
		return
	}
	event := models.CatalogChangedEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Category:  category,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to encode change event", zap.Error(err))
		return
	}
	if err := s.changes.PublishCatalogChange(ctx, payload); err != nil {
		s.logger.Error("Failed to publish change event",
			zap.String("event_type", eventType), zap.Error(err))
	}
}
