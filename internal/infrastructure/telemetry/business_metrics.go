package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are registered without a meter.
var ErrMeterNil = errors.New("meter cannot be nil")

var (
	attrCategory       = attribute.Key("product_category")
	attrReviewOutcome  = attribute.Key("review_outcome")
	attrOrderStatus    = attribute.Key("order_status")
	attrSettlement     = attribute.Key("settlement_kind")
	attrPaymentMethod  = attribute.Key("payment_method")
	attrChannel        = attribute.Key("channel")
	attrDeliveryStatus = attribute.Key("delivery_status")
)

// deliveryDayBuckets spans same-day pickup to a month in transit.
var deliveryDayBuckets = []float64{0.5, 1, 2, 3, 5, 7, 14, 30}

// MarketplaceMetrics records business counters for listings, orders,
// escrow settlements and notifications. A nil *MarketplaceMetrics is a
// valid no-op recorder.
type MarketplaceMetrics struct {
	productsListed   metric.Int64Counter
	productsReviewed metric.Int64Counter
	ordersPlaced     metric.Int64Counter
	orderValueCents  metric.Int64Counter
	orderTransitions metric.Int64Counter
	deliveryDays     metric.Float64Histogram
	paymentsHeld     metric.Int64Counter
	paymentsSettled  metric.Int64Counter
	notifications    metric.Int64Counter
}

// NewMarketplaceMetrics registers all marketplace instruments on meter.
func NewMarketplaceMetrics(meter metric.Meter) (*MarketplaceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &MarketplaceMetrics{}
	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&m.productsListed, "krisi_products_listed_total", "Products listed by farmers", "{products}"},
		{&m.productsReviewed, "krisi_products_reviewed_total", "Product review decisions", "{products}"},
		{&m.ordersPlaced, "krisi_orders_placed_total", "Orders placed by buyers", "{orders}"},
		{&m.orderValueCents, "krisi_order_value_total", "Placed order value in cents", "{cents}"},
		{&m.orderTransitions, "krisi_order_transitions_total", "Order status transitions", "{transitions}"},
		{&m.paymentsHeld, "krisi_payments_held_total", "Payments placed in escrow", "{payments}"},
		{&m.paymentsSettled, "krisi_payments_settled_total", "Escrow settlements", "{payments}"},
		{&m.notifications, "krisi_notifications_total", "Notification delivery outcomes", "{notifications}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	var err error
	m.deliveryDays, err = meter.Float64Histogram("krisi_order_delivery_days",
		metric.WithDescription("Days from order placement to delivery"),
		metric.WithUnit("d"),
		metric.WithExplicitBucketBoundaries(deliveryDayBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram krisi_order_delivery_days: %w", err)
	}
	return m, nil
}

func (m *MarketplaceMetrics) RecordProductListed(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.productsListed.Add(ctx, 1, metric.WithAttributes(attrCategory.String(category)))
}

// RecordProductReviewed counts an approve or reject decision.
func (m *MarketplaceMetrics) RecordProductReviewed(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.productsReviewed.Add(ctx, 1, metric.WithAttributes(attrReviewOutcome.String(outcome)))
}

// RecordOrderPlaced counts an order and adds its total in cents.
func (m *MarketplaceMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1)
	m.orderValueCents.Add(ctx, total.Shift(2).IntPart())
}

func (m *MarketplaceMetrics) RecordOrderTransition(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.orderTransitions.Add(ctx, 1, metric.WithAttributes(attrOrderStatus.String(status)))
}

// RecordDelivery observes the placement-to-delivery time of an order.
func (m *MarketplaceMetrics) RecordDelivery(ctx context.Context, days float64) {
	if m == nil {
		return
	}
	m.deliveryDays.Record(ctx, days)
}

func (m *MarketplaceMetrics) RecordPaymentHeld(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.paymentsHeld.Add(ctx, 1, metric.WithAttributes(attrPaymentMethod.String(method)))
}

// RecordPaymentSettled counts a release or refund.
func (m *MarketplaceMetrics) RecordPaymentSettled(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.paymentsSettled.Add(ctx, 1, metric.WithAttributes(attrSettlement.String(kind)))
}

// RecordNotification counts a delivery outcome per channel.
func (m *MarketplaceMetrics) RecordNotification(ctx context.Context, channel, status string) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attrChannel.String(channel),
		attrDeliveryStatus.String(status),
	))
}
