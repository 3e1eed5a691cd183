package notify

import (
	"fmt"
	"strconv"
	"strings"

	"catalog-service/internal/models"
)

// Message bodies mirror the storefront's WhatsApp texts. Prices quote MRP;
// the offer price is shown in parentheses when present.

// InquiryMessage builds the single-product contact text.
func InquiryMessage(p models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi! I'm interested in:\n\n*%s* (ID: %d)\n", p.Name, p.ID)
	b.WriteString("₹" + formatPrice(p.MRP))
	if p.OfferPrice != nil {
		fmt.Fprintf(&b, " (Offer: ₹%s)", formatPrice(*p.OfferPrice))
	}
	fmt.Fprintf(&b, "\nSize: %s %s\n", p.Dimension, p.Units)
	if p.Description != "" {
		b.WriteString(p.Description + "\n")
	}
	b.WriteString("\nPlease share details.")
	return b.String()
}

// OrderMessage builds the order submission text with itemized lines and the
// grand total.
func OrderMessage(o models.Order) string {
	lines := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, fmt.Sprintf("*%s* × %d = ₹%s",
			item.Name, item.Quantity, formatPrice(item.LineTotal())))
	}

	return fmt.Sprintf("*New Order*\n\n*Order ID:* %s\n\n%s\n\n*Total: ₹%s*\n\nPlease confirm.",
		o.ID, strings.Join(lines, "\n"), formatPrice(o.Total))
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
