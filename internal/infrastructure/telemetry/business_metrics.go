package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks ledger and procurement activity: stock movements,
// reservations, receipt completions and payment transitions.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	stockMovementTotal    *Counter
	reservationTotal      *Counter
	receiptCompletedTotal *Counter
	paymentTotal          *Counter
	paymentAmountTotal    *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: cfg.Logger,
	}
	if bm.logger == nil {
		bm.logger = zap.NewNop()
	}

	var err error
	if bm.stockMovementTotal, err = NewCounter(bm.meter,
		"inventory_stock_movements_total",
		"Total number of stock movements posted to the ledger",
		"{movement}"); err != nil {
		return nil, err
	}
	if bm.reservationTotal, err = NewCounter(bm.meter,
		"inventory_reservations_total",
		"Total number of reserve/release operations",
		"{operation}"); err != nil {
		return nil, err
	}
	if bm.receiptCompletedTotal, err = NewCounter(bm.meter,
		"procurement_goods_receipts_completed_total",
		"Total number of goods receipts completed",
		"{receipt}"); err != nil {
		return nil, err
	}
	if bm.paymentTotal, err = NewCounter(bm.meter,
		"procurement_payments_total",
		"Total number of supplier payment status transitions",
		"{payment}"); err != nil {
		return nil, err
	}
	if bm.paymentAmountTotal, err = NewCounter(bm.meter,
		"procurement_payment_amount_total",
		"Total completed payment amount in minor units",
		"{cent}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordStockMovement records one movement posted to the ledger
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, reason string) {
	bm.stockMovementTotal.Inc(ctx, attribute.String("reason", reason))
}

// RecordReservation records one reserve or release operation
func (bm *BusinessMetrics) RecordReservation(ctx context.Context, warehouseID uuid.UUID) {
	bm.reservationTotal.Inc(ctx, attribute.String("warehouse_id", warehouseID.String()))
}

// RecordReceiptCompleted records a goods receipt completion
func (bm *BusinessMetrics) RecordReceiptCompleted(ctx context.Context, lineCount int) {
	bm.receiptCompletedTotal.Inc(ctx, attribute.Int("lines", lineCount))
}

// RecordPayment records a supplier payment status transition
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, method, status string) {
	bm.paymentTotal.Inc(ctx,
		attribute.String("method", method),
		attribute.String("status", status),
	)
}

// RecordPaymentAmount records a completed payment's amount in minor units
func (bm *BusinessMetrics) RecordPaymentAmount(ctx context.Context, method string, amount decimal.Decimal) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.paymentAmountTotal.Add(ctx, cents, attribute.String("method", method))
}
