package livefeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCollection serves whatever documents are currently planted in it.
type fakeCollection struct {
	mu   sync.Mutex
	docs []models.CategoryDoc
	err  error
}

func (f *fakeCollection) set(docs []models.CategoryDoc) {
	f.mu.Lock()
	f.docs = docs
	f.mu.Unlock()
}

func (f *fakeCollection) GetCategoryDocs(context.Context) ([]models.CategoryDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type fakeNotifier struct {
	ch chan struct{}
}

func (f *fakeNotifier) Notifications(context.Context) (<-chan struct{}, error) {
	return f.ch, nil
}

// collector gathers delivered snapshots.
type collector struct {
	mu    sync.Mutex
	snaps []models.CatalogSnapshot
}

func (c *collector) deliver(snap models.CatalogSnapshot) {
	c.mu.Lock()
	c.snaps = append(c.snaps, snap)
	c.mu.Unlock()
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snaps)
}

func (c *collector) last() models.CatalogSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snaps[len(c.snaps)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	coll := &fakeCollection{}
	coll.set([]models.CategoryDoc{
		{Name: "SOFAS", Products: []models.Product{{ID: 101}}},
	})
	feed := New(coll, &fakeNotifier{ch: make(chan struct{})})

	var got collector
	sub, err := feed.Subscribe(context.Background(), got.deliver)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Equal(t, 1, got.count())
	assert.Equal(t, []string{"SOFAS"}, got.last().Categories)
}

func TestSubscribeFailsWhenInitialReadFails(t *testing.T) {
	coll := &fakeCollection{err: errors.New("db down")}
	feed := New(coll, &fakeNotifier{ch: make(chan struct{})})

	_, err := feed.Subscribe(context.Background(), func(models.CatalogSnapshot) {})
	assert.Error(t, err)
}

func TestNudgeTriggersFullRedelivery(t *testing.T) {
	coll := &fakeCollection{}
	coll.set([]models.CategoryDoc{{Name: "SOFAS", Products: []models.Product{{ID: 101}}}})
	notifier := &fakeNotifier{ch: make(chan struct{}, 1)}
	feed := New(coll, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	var got collector
	sub, err := feed.Subscribe(ctx, got.deliver)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// The collection changes and a nudge arrives: the subscriber gets the
	// entire new snapshot, not a diff.
	coll.set([]models.CategoryDoc{
		{Name: "SOFAS", Products: []models.Product{{ID: 101}}},
		{Name: "BEDS", Products: []models.Product{{ID: 102}}},
	})
	notifier.ch <- struct{}{}

	waitFor(t, func() bool { return got.count() >= 2 })
	assert.Equal(t, []string{"SOFAS", "BEDS"}, got.last().Categories)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	coll := &fakeCollection{}
	coll.set([]models.CategoryDoc{{Name: "SOFAS"}})
	notifier := &fakeNotifier{ch: make(chan struct{}, 1)}
	feed := New(coll, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	var kept, dropped collector
	keep, err := feed.Subscribe(ctx, kept.deliver)
	require.NoError(t, err)
	defer keep.Unsubscribe()

	drop, err := feed.Subscribe(ctx, dropped.deliver)
	require.NoError(t, err)
	drop.Unsubscribe()
	droppedBefore := dropped.count()

	notifier.ch <- struct{}{}
	waitFor(t, func() bool { return kept.count() >= 2 })

	assert.Equal(t, droppedBefore, dropped.count())

	// Unsubscribing twice is harmless.
	drop.Unsubscribe()
}

func TestFailedRereadIsAGapNotAnError(t *testing.T) {
	coll := &fakeCollection{}
	coll.set([]models.CategoryDoc{{Name: "SOFAS"}})
	notifier := &fakeNotifier{ch: make(chan struct{}, 2)}
	feed := New(coll, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	var got collector
	sub, err := feed.Subscribe(ctx, got.deliver)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// A nudge during an outage produces no delivery and no crash.
	coll.mu.Lock()
	coll.err = errors.New("transient")
	coll.mu.Unlock()
	notifier.ch <- struct{}{}

	// Once the outage clears, the next nudge delivers again.
	time.Sleep(20 * time.Millisecond)
	coll.mu.Lock()
	coll.err = nil
	coll.mu.Unlock()
	notifier.ch <- struct{}{}

	waitFor(t, func() bool { return got.count() >= 2 })
}

func TestBuildSnapshotNilProductsBecomeEmpty(t *testing.T) {
	snap := BuildSnapshot([]models.CategoryDoc{
		{Name: "SOFAS", Products: nil},
		{Name: "BEDS", Products: []models.Product{{ID: 102}}},
	})

	assert.Equal(t, []string{"SOFAS", "BEDS"}, snap.Categories)
	assert.NotNil(t, snap.Products["SOFAS"])
	assert.Empty(t, snap.Products["SOFAS"])
	assert.Len(t, snap.Products["BEDS"], 1)
}
