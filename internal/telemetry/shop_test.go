package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestShopMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewShopMetricsFrom(mp)
	require.NoError(t, err)

	m.RecordCartMutation(ctx, "add")
	m.RecordCartMutation(ctx, "add")
	m.RecordCartMutation(ctx, "clear")
	m.RecordOrder(ctx, decimal.RequireFromString("57.25"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		byName[md.Name] = md
	}

	mutations, ok := byName["ekla.cart.mutations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range mutations.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, mutations.DataPoints, 2)

	orders, ok := byName["ekla.checkout.orders"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), orders.DataPoints[0].Value)

	revenue, ok := byName["ekla.checkout.revenue"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.InDelta(t, 57.25, revenue.DataPoints[0].Sum, 0.001)
}

func TestShopMetrics_NilIsNoop(t *testing.T) {
	var m *ShopMetrics
	m.RecordCartMutation(context.Background(), "add")
	m.RecordOrder(context.Background(), decimal.NewFromInt(1))
}
