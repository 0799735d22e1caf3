package telemetry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *BusinessMetrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	bm, err := NewBusinessMetrics(BusinessMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)
	return reader, bm
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Sum[int64], bool) {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				return sum, true
			}
		}
	}
	return metricdata.Sum[int64]{}, false
}

func TestBusinessMetricsRecordStockMovement(t *testing.T) {
	reader, bm := newTestMeter(t)

	bm.RecordStockMovement(t.Context(), "GOODS_RECEIPT")
	bm.RecordStockMovement(t.Context(), "GOODS_RECEIPT")
	bm.RecordStockMovement(t.Context(), "MANUAL_ADJUSTMENT")

	sum, found := collectSum(t, reader, "inventory_stock_movements_total")
	require.True(t, found)
	require.Len(t, sum.DataPoints, 2)

	byReason := map[string]int64{}
	for _, dp := range sum.DataPoints {
		reason, ok := dp.Attributes.Value(attribute.Key("reason"))
		require.True(t, ok)
		byReason[reason.AsString()] = dp.Value
	}
	assert.Equal(t, int64(2), byReason["GOODS_RECEIPT"])
	assert.Equal(t, int64(1), byReason["MANUAL_ADJUSTMENT"])
}

func TestBusinessMetricsRecordReservation(t *testing.T) {
	reader, bm := newTestMeter(t)
	warehouseID := uuid.New()

	bm.RecordReservation(t.Context(), warehouseID)

	sum, found := collectSum(t, reader, "inventory_reservations_total")
	require.True(t, found)
	require.Len(t, sum.DataPoints, 1)

	id, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("warehouse_id"))
	require.True(t, ok)
	assert.Equal(t, warehouseID.String(), id.AsString())
}

func TestBusinessMetricsRecordPayment(t *testing.T) {
	reader, bm := newTestMeter(t)

	bm.RecordPayment(t.Context(), "CASH", "COMPLETED")
	bm.RecordPaymentAmount(t.Context(), "CASH", decimal.NewFromFloat(12.34))

	sum, found := collectSum(t, reader, "procurement_payments_total")
	require.True(t, found)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	// Amount is recorded in minor units.
	amount, found := collectSum(t, reader, "procurement_payment_amount_total")
	require.True(t, found)
	require.Len(t, amount.DataPoints, 1)
	assert.Equal(t, int64(1234), amount.DataPoints[0].Value)
}

func TestMeterProviderDisabled(t *testing.T) {
	mp, err := NewMeterProvider(t.Context(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(t.Context()))
	assert.NoError(t, mp.Shutdown(t.Context()))
}
