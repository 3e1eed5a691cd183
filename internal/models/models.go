package models

import "time"

// MinProductID is the floor for product identifiers. The first product ever
// created gets MinProductID + 1.
const MinProductID = 100

// Product is a single catalog entry. Products are embedded in their category
// document; the category they live in is a location, not a stored field.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Dimension   string    `json:"dimension"`
	Units       string    `json:"units"`
	MRP         float64   `json:"mrp"`
	OfferPrice  *float64  `json:"offerPrice"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy that shares no memory with the receiver. Cart
// line items hold clones so later catalog edits never reach them.
func (p Product) Clone() Product {
	c := p
	if p.OfferPrice != nil {
		v := *p.OfferPrice
		c.OfferPrice = &v
	}
	if p.Images != nil {
		c.Images = make([]string, len(p.Images))
		copy(c.Images, p.Images)
	}
	return c
}

// CategoryDoc is one document of the backing collection. The category name
// is the document key; products are embedded wholesale.
type CategoryDoc struct {
	Name      string    `json:"name"`
	Products  []Product `json:"products"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CatalogSnapshot is the full state of the collection at one point in time.
// Categories preserves the order the documents were read in; that order is
// not guaranteed stable across snapshots.
type CatalogSnapshot struct {
	Categories []string             `json:"categories"`
	Products   map[string][]Product `json:"products"`
}

// CartItem is a denormalized product copy plus a quantity. Identity is the
// product id; quantity is always >= 1 while the item is present.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal charges MRP, matching the storefront's observed behavior.
func (i CartItem) LineTotal() float64 {
	return i.MRP * float64(i.Quantity)
}

// Order is the ephemeral record built at checkout. The id is cosmetic and
// not stored anywhere durable.
type Order struct {
	ID        string     `json:"order_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
}

// ContactSettings is the settings document that supplies the destination for
// outbound messages. A missing document means messaging is disabled.
type ContactSettings struct {
	PhoneNumber string `json:"phoneNumber"`
}
