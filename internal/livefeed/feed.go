package livefeed

import (
	"context"
	"fmt"
	"sync"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollectionReader reads the entire backing collection.
type CollectionReader interface {
	GetCategoryDocs(ctx context.Context) ([]models.CategoryDoc, error)
}

// Notifier supplies a nudge channel that fires whenever any document in the
// collection may have changed. Nudges carry no payload and no ordering.
type Notifier interface {
	Notifications(ctx context.Context) (<-chan struct{}, error)
}

// SnapshotFunc receives the entire current snapshot, not a diff. It must
// tolerate overlapping and stale deliveries.
type SnapshotFunc func(models.CatalogSnapshot)

// Feed is the live collection adapter: on every change nudge it re-reads
// the full collection and delivers the whole snapshot to every subscriber.
type Feed struct {
	reader   CollectionReader
	notifier Notifier
	logger   *zap.Logger

	mu   sync.Mutex
	subs map[string]SnapshotFunc
}

// Subscription identifies one registered callback. Unsubscribe stops
// further delivery; it is safe to call more than once.
type Subscription struct {
	id   string
	feed *Feed
}

// Unsubscribe removes the callback from the feed.
func (s *Subscription) Unsubscribe() {
	s.feed.mu.Lock()
	delete(s.feed.subs, s.id)
	s.feed.mu.Unlock()
}

// New creates a feed over the given collection.
func New(reader CollectionReader, notifier Notifier) *Feed {
	return &Feed{
		reader:   reader,
		notifier: notifier,
		logger:   util.GetLogger(),
		subs:     make(map[string]SnapshotFunc),
	}
}

// Subscribe registers a callback and immediately delivers the current
// snapshot to it.
func (f *Feed) Subscribe(ctx context.Context, fn SnapshotFunc) (*Subscription, error) {
	snap, err := f.readSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot read failed: %w", err)
	}

	sub := &Subscription{id: uuid.New().String(), feed: f}
	f.mu.Lock()
	f.subs[sub.id] = fn
	f.mu.Unlock()

	fn(snap)
	return sub, nil
}

// Run pumps change nudges into snapshot deliveries until ctx is cancelled.
// A failed re-read is logged and skipped; subscribers just see a gap.
func (f *Feed) Run(ctx context.Context) error {
	nudges, err := f.notifier.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to start change notifications: %w", err)
	}

	f.logger.Info("Live feed started")

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Live feed stopping")
			return ctx.Err()
		case _, ok := <-nudges:
			if !ok {
				f.logger.Info("Change bus closed, live feed stopping")
				return nil
			}
			snap, err := f.readSnapshot(ctx)
			if err != nil {
				util.CatalogSnapshotReadsFailed.Inc()
				f.logger.Error("Snapshot re-read failed", zap.Error(err))
				continue
			}
			f.fanOut(snap)
		}
	}
}

func (f *Feed) readSnapshot(ctx context.Context) (models.CatalogSnapshot, error) {
	docs, err := f.reader.GetCategoryDocs(ctx)
	if err != nil {
		return models.CatalogSnapshot{}, err
	}
	return BuildSnapshot(docs), nil
}

func (f *Feed) fanOut(snap models.CatalogSnapshot) {
	f.mu.Lock()
	fns := make([]SnapshotFunc, 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// BuildSnapshot assembles a snapshot from raw documents, preserving read
// order. Documents with nil product lists come through as empty.
func BuildSnapshot(docs []models.CategoryDoc) models.CatalogSnapshot {
	snap := models.CatalogSnapshot{
		Categories: make([]string, 0, len(docs)),
		Products:   make(map[string][]models.Product, len(docs)),
	}
	for _, doc := range docs {
		products := doc.Products
		if products == nil {
			products = []models.Product{}
		}
		snap.Categories = append(snap.Categories, doc.Name)
		snap.Products[doc.Name] = products
	}
	return snap
}
