package cart

import (
	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

// Engine holds cart state for one session. Line items are denormalized
// product copies taken at add time; later catalog edits never reach them.
// Every mutation synchronously writes the full cart back to storage.
type Engine struct {
	session string
	storage Storage
	items   []models.CartItem
	logger  *zap.Logger
}

// NewEngine rehydrates the session's cart from storage. A corrupt persisted
// value is logged and degraded to an empty cart; it is never surfaced.
func NewEngine(storage Storage, session string) *Engine {
	e := &Engine{
		session: session,
		storage: storage,
		logger:  util.GetLogger(),
	}

	items, err := storage.Load(session)
	if err != nil {
		e.logger.Warn("Corrupt persisted cart, starting empty",
			zap.String("session", session), zap.Error(err))
		return e
	}
	e.items = items
	return e
}

// Add puts a product in the cart: absent becomes quantity 1, present is
// incremented by 1.
func (e *Engine) Add(p models.Product) {
	for i := range e.items {
		if e.items[i].ID == p.ID {
			e.items[i].Quantity++
			e.persist()
			util.CartMutationsTotal.WithLabelValues("add").Inc()
			return
		}
	}

	e.items = append(e.items, models.CartItem{Product: p.Clone(), Quantity: 1})
	e.persist()
	util.CartMutationsTotal.WithLabelValues("add").Inc()
}

// Adjust changes a present item's quantity by delta, flooring at 1. A
// decrement never removes the item; Remove is the only way out. Unknown ids
// are ignored.
func (e *Engine) Adjust(id, delta int) {
	for i := range e.items {
		if e.items[i].ID == id {
			q := e.items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			e.items[i].Quantity = q
			e.persist()
			util.CartMutationsTotal.WithLabelValues("adjust").Inc()
			return
		}
	}
}

// Remove drops the item unconditionally, whatever its quantity.
func (e *Engine) Remove(id int) {
	kept := e.items[:0]
	for _, item := range e.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	e.items = kept
	e.persist()
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
}

// Items returns a copy of the current line items.
func (e *Engine) Items() []models.CartItem {
	out := make([]models.CartItem, len(e.items))
	copy(out, e.items)
	return out
}

// Len returns the number of line items.
func (e *Engine) Len() int {
	return len(e.items)
}

// Total sums MRP × quantity over all line items.
func (e *Engine) Total() float64 {
	var total float64
	for _, item := range e.items {
		total += item.LineTotal()
	}
	return total
}

// Clear empties the cart and deletes its persisted copy.
func (e *Engine) Clear() {
	e.items = nil
	if err := e.storage.Delete(e.session); err != nil {
		e.logger.Error("Failed to delete persisted cart",
			zap.String("session", e.session), zap.Error(err))
	}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
}

func (e *Engine) persist() {
	items := e.items
	if items == nil {
		items = []models.CartItem{}
	}
	if err := e.storage.Save(e.session, items); err != nil {
		e.logger.Error("Failed to persist cart",
			zap.String("session", e.session), zap.Error(err))
	}
}
