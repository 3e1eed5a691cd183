package models

import "time"

// Catalog change event types
const (
	EventTypeCategoryCreated = "CATEGORY_CREATED"
	EventTypeCategoryDeleted = "CATEGORY_DELETED"
	EventTypeProductsUpdated = "PRODUCTS_UPDATED"
)

// CatalogChangedEvent is published on the change bus after every successful
// mutation. Consumers never read the payload for data; any event means
// "re-read the whole collection". There are no sequence numbers.
type CatalogChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// OutboundMessage is one fire-and-forget text handed to the notification
// sink. Delivery is best-effort; nothing in the core awaits it.
type OutboundMessage struct {
	MessageID   string    `json:"message_id"`
	Destination string    `json:"destination"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
