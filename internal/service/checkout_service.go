package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"catalog-service/internal/cart"
	"catalog-service/internal/models"
	"catalog-service/internal/notify"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

// SettingsReader supplies the contact destination for outbound messages.
type SettingsReader interface {
	GetContactSettings(ctx context.Context) (models.ContactSettings, error)
}

// CheckoutService converts a cart into an order message and hands it to the
// notification sink. The sink is best-effort: its outcome never changes
// what the caller sees.
type CheckoutService struct {
	sink     notify.Sink
	settings SettingsReader
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(sink notify.Sink, settings SettingsReader) *CheckoutService {
	return &CheckoutService{
		sink:     sink,
		settings: settings,
		logger:   util.GetLogger(),
	}
}

// Checkout submits the cart as an order. An empty cart is a no-op, not an
// error. On submission the cart and its persisted copy are cleared
// unconditionally and the order is acknowledged, whatever the sink did.
func (s *CheckoutService) Checkout(ctx context.Context, engine *cart.Engine) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	items := engine.Items()
	if len(items) == 0 {
		return nil, nil
	}

	order := models.Order{
		ID:        newOrderID(),
		Items:     items,
		Total:     engine.Total(),
		CreatedAt: time.Now(),
	}

	if err := s.sink.Send(ctx, s.destination(ctx), notify.OrderMessage(order)); err != nil {
		// Best-effort hand-off: the order still goes through.
		s.logger.Error("Order notification send failed",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	engine.Clear()
	util.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total))
	return &order, nil
}

// SendInquiry sends the single-product contact message. Like the order
// message it is fire-and-forget; failures are logged only.
func (s *CheckoutService) SendInquiry(ctx context.Context, product models.Product) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.SendInquiry")
	defer span.End()

	if err := s.sink.Send(ctx, s.destination(ctx), notify.InquiryMessage(product)); err != nil {
		s.logger.Error("Inquiry send failed",
			zap.Int("product_id", product.ID), zap.Error(err))
	}
}

func (s *CheckoutService) destination(ctx context.Context) string {
	settings, err := s.settings.GetContactSettings(ctx)
	if err != nil {
		s.logger.Warn("Contact settings lookup failed, messaging disabled", zap.Error(err))
		return ""
	}
	return settings.PhoneNumber
}

// newOrderID builds the cosmetic display identifier: a fixed prefix plus a
// 6-digit numeral. Collisions are possible and tolerated; this is not a
// durable key.
func newOrderID() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.Intn(900000))
}
