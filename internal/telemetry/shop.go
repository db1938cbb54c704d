package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/joao-fontenele/ekla-marketplace"

// ShopMetrics holds the storefront business instruments. A nil *ShopMetrics
// records nothing.
type ShopMetrics struct {
	cartMutations metric.Int64Counter
	orders        metric.Int64Counter
	revenue       metric.Float64Histogram
}

// NewShopMetrics registers the instruments on the global MeterProvider.
func NewShopMetrics() (*ShopMetrics, error) {
	return NewShopMetricsFrom(otel.GetMeterProvider())
}

func NewShopMetricsFrom(mp metric.MeterProvider) (*ShopMetrics, error) {
	meter := mp.Meter(meterName)

	cartMutations, err := meter.Int64Counter("ekla.cart.mutations",
		metric.WithDescription("Cart operations by kind"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	orders, err := meter.Int64Counter("ekla.checkout.orders",
		metric.WithDescription("Orders placed through checkout"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Float64Histogram("ekla.checkout.revenue",
		metric.WithDescription("Order totals placed through checkout"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, err
	}

	return &ShopMetrics{
		cartMutations: cartMutations,
		orders:        orders,
		revenue:       revenue,
	}, nil
}

func (m *ShopMetrics) RecordCartMutation(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *ShopMetrics) RecordOrder(ctx context.Context, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.orders.Add(ctx, 1)
	m.revenue.Record(ctx, total.InexactFloat64())
}
