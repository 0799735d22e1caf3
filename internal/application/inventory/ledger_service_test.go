package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryPositionRepo is an in-memory StockPositionRepository for service tests.
type memoryPositionRepo struct {
	mu        sync.Mutex
	positions map[string]*inventory.StockPosition
}

func newMemoryPositionRepo() *memoryPositionRepo {
	return &memoryPositionRepo{positions: make(map[string]*inventory.StockPosition)}
}

func (r *memoryPositionRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.positions {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryPositionRepo) FindByKey(_ context.Context, key inventory.PositionKey) (*inventory.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.positions[key.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPositionRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockPosition
	for _, p := range r.positions {
		if p.WarehouseID == warehouseID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPositionRepo) FindByProduct(_ context.Context, productID uuid.UUID, variantID *uuid.UUID) ([]inventory.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockPosition
	for _, p := range r.positions {
		if p.ProductID != productID {
			continue
		}
		if variantID != nil && p.VariantID != *variantID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryPositionRepo) GetOrCreate(_ context.Context, key inventory.PositionKey) (*inventory.StockPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.positions[key.String()]; ok {
		cp := *p
		return &cp, nil
	}
	p, err := inventory.NewStockPosition(key.WarehouseID, key.ProductID, key.VariantID)
	if err != nil {
		return nil, err
	}
	stored := *p
	r.positions[key.String()] = &stored
	cp := stored
	return &cp, nil
}

func (r *memoryPositionRepo) Save(_ context.Context, position *inventory.StockPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *position
	r.positions[position.Key().String()] = &cp
	return nil
}

func (r *memoryPositionRepo) SaveWithVersion(_ context.Context, position *inventory.StockPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := position.Key().String()
	// Every domain mutation bumps the version exactly once before saving.
	if existing, ok := r.positions[key]; ok && existing.Version != position.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *position
	r.positions[key] = &cp
	return nil
}

func (r *memoryPositionRepo) CountByWarehouse(_ context.Context, warehouseID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.positions {
		if p.WarehouseID == warehouseID {
			n++
		}
	}
	return n, nil
}

// memoryMovementRepo is an in-memory StockMovementRepository.
type memoryMovementRepo struct {
	mu        sync.Mutex
	movements []inventory.StockMovement
}

func newMemoryMovementRepo() *memoryMovementRepo {
	return &memoryMovementRepo{}
}

func (r *memoryMovementRepo) Create(_ context.Context, m *inventory.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memoryMovementRepo) CreateBatch(ctx context.Context, ms []*inventory.StockMovement) error {
	for _, m := range ms {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryMovementRepo) FindByPosition(_ context.Context, stockPositionID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.StockPositionID == stockPositionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMovementRepo) FindByReference(_ context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.ReferenceType != nil && *m.ReferenceType == refType && m.ReferenceID != nil && *m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMovementRepo) SumDeltaByPosition(_ context.Context, stockPositionID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.StockPositionID == stockPositionID {
			sum = sum.Add(m.Delta)
		}
	}
	return sum, nil
}

func (r *memoryMovementRepo) CountByPosition(_ context.Context, stockPositionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.StockPositionID == stockPositionID {
			n++
		}
	}
	return n, nil
}

func newTestLedger() (*LedgerService, *memoryPositionRepo, *memoryMovementRepo) {
	positions := newMemoryPositionRepo()
	movements := newMemoryMovementRepo()
	scope := NewNoOpTransactionScope(positions, movements)
	return NewLedgerService(scope), positions, movements
}

func TestLedgerService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the position on first adjustment", func(t *testing.T) {
		svc, _, movements := newTestLedger()
		warehouseID, productID := uuid.New(), uuid.New()

		resp, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: warehouseID,
			ProductID:   productID,
			NewQuantity: decimal.NewFromInt(100),
			Reason:      inventory.MovementReasonInitialSetup,
			Actor:       "tester",
		})

		require.NoError(t, err)
		assert.Equal(t, "100", resp.PhysicalQuantity.String())
		assert.Equal(t, "100", resp.AvailableQuantity.String())
		assert.Len(t, movements.movements, 1)
		assert.Equal(t, "100", movements.movements[0].Delta.String())
	})

	t.Run("rejects ledger-internal reasons", func(t *testing.T) {
		svc, _, _ := newTestLedger()

		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: uuid.New(),
			ProductID:   uuid.New(),
			NewQuantity: decimal.NewFromInt(10),
			Reason:      inventory.MovementReasonTransferIn,
		})
		require.Error(t, err)
	})

	t.Run("rejects adjustment below reserved", func(t *testing.T) {
		svc, _, _ := newTestLedger()
		warehouseID, productID := uuid.New(), uuid.New()
		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: warehouseID, ProductID: productID,
			NewQuantity: decimal.NewFromInt(100), Reason: inventory.MovementReasonInitialSetup,
		})
		require.NoError(t, err)
		_, err = svc.Reserve(ctx, ReservationRequest{
			WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(40),
		})
		require.NoError(t, err)

		_, err = svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: warehouseID, ProductID: productID,
			NewQuantity: decimal.NewFromInt(30), Reason: inventory.MovementReasonManualAdjustment,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NEGATIVE_STOCK", domainErr.Code)
	})
}

func TestLedgerService_ReserveRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve then overdraw leaves state unchanged", func(t *testing.T) {
		svc, _, _ := newTestLedger()
		warehouseID, productID := uuid.New(), uuid.New()
		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: warehouseID, ProductID: productID,
			NewQuantity: decimal.NewFromInt(100), Reason: inventory.MovementReasonInitialSetup,
		})
		require.NoError(t, err)

		resp, err := svc.Reserve(ctx, ReservationRequest{
			WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(30),
		})
		require.NoError(t, err)
		assert.Equal(t, "70", resp.AvailableQuantity.String())

		_, err = svc.Reserve(ctx, ReservationRequest{
			WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(80),
		})
		require.Error(t, err)

		current, err := svc.GetPosition(ctx, warehouseID, productID, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, "30", current.ReservedQuantity.String())
	})

	t.Run("release returns the hold", func(t *testing.T) {
		svc, _, _ := newTestLedger()
		warehouseID, productID := uuid.New(), uuid.New()
		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: warehouseID, ProductID: productID,
			NewQuantity: decimal.NewFromInt(50), Reason: inventory.MovementReasonInitialSetup,
		})
		require.NoError(t, err)
		_, err = svc.Reserve(ctx, ReservationRequest{
			WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(20),
		})
		require.NoError(t, err)

		resp, err := svc.Release(ctx, ReservationRequest{
			WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(20),
		})

		require.NoError(t, err)
		assert.Equal(t, "50", resp.AvailableQuantity.String())
	})

	t.Run("reserving an unknown position fails", func(t *testing.T) {
		svc, _, _ := newTestLedger()
		_, err := svc.Reserve(ctx, ReservationRequest{
			WarehouseID: uuid.New(), ProductID: uuid.New(), Quantity: decimal.NewFromInt(1),
		})
		require.Error(t, err)
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves quantity between warehouses", func(t *testing.T) {
		svc, _, movements := newTestLedger()
		from, to, productID := uuid.New(), uuid.New(), uuid.New()
		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: from, ProductID: productID,
			NewQuantity: decimal.NewFromInt(100), Reason: inventory.MovementReasonInitialSetup,
		})
		require.NoError(t, err)

		resp, err := svc.Transfer(ctx, TransferRequest{
			FromWarehouseID: from, ToWarehouseID: to,
			ProductID: productID, Quantity: decimal.NewFromInt(40), Actor: "tester",
		})

		require.NoError(t, err)
		assert.Equal(t, "40", resp.PhysicalQuantity.String())

		source, err := svc.GetPosition(ctx, from, productID, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, "60", source.PhysicalQuantity.String())

		// One transfer-out and one transfer-in sharing a reference ID.
		require.Len(t, movements.movements, 3)
		out, in := movements.movements[1], movements.movements[2]
		assert.Equal(t, inventory.MovementReasonTransferOut, out.Reason)
		assert.Equal(t, inventory.MovementReasonTransferIn, in.Reason)
		require.NotNil(t, out.ReferenceID)
		assert.Equal(t, *out.ReferenceID, *in.ReferenceID)
	})

	t.Run("insufficient source stock posts nothing", func(t *testing.T) {
		svc, _, movements := newTestLedger()
		from, to, productID := uuid.New(), uuid.New(), uuid.New()
		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: from, ProductID: productID,
			NewQuantity: decimal.NewFromInt(10), Reason: inventory.MovementReasonInitialSetup,
		})
		require.NoError(t, err)

		_, err = svc.Transfer(ctx, TransferRequest{
			FromWarehouseID: from, ToWarehouseID: to,
			ProductID: productID, Quantity: decimal.NewFromInt(40),
		})

		require.Error(t, err)
		assert.Len(t, movements.movements, 1)
	})

	t.Run("rejects same-warehouse transfer", func(t *testing.T) {
		svc, _, _ := newTestLedger()
		w := uuid.New()
		_, err := svc.Transfer(ctx, TransferRequest{
			FromWarehouseID: w, ToWarehouseID: w,
			ProductID: uuid.New(), Quantity: decimal.NewFromInt(1),
		})
		require.Error(t, err)
	})
}

func TestLedgerService_GetAcrossWarehouses(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestLedger()
	productID := uuid.New()

	for _, qty := range []int64{100, 50} {
		_, err := svc.AdjustStock(ctx, AdjustStockRequest{
			WarehouseID: uuid.New(), ProductID: productID,
			NewQuantity: decimal.NewFromInt(qty), Reason: inventory.MovementReasonInitialSetup,
		})
		require.NoError(t, err)
	}

	resp, err := svc.GetAcrossWarehouses(ctx, productID, nil)

	require.NoError(t, err)
	assert.Equal(t, "150", resp.TotalPhysical.String())
	assert.Equal(t, "150", resp.TotalAvailable.String())
	assert.Len(t, resp.Warehouses, 2)
}

func TestLedgerService_Reconcile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestLedger()
	warehouseID, productID := uuid.New(), uuid.New()

	_, err := svc.AdjustStock(ctx, AdjustStockRequest{
		WarehouseID: warehouseID, ProductID: productID,
		NewQuantity: decimal.NewFromInt(100), Reason: inventory.MovementReasonInitialSetup,
	})
	require.NoError(t, err)
	_, err = svc.PostMovement(ctx, PostMovementRequest{
		WarehouseID: warehouseID, ProductID: productID,
		Delta: decimal.NewFromInt(-25), Reason: inventory.MovementReasonManualAdjustment,
	})
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, ReservationRequest{
		WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	sum, ok, err := svc.Reconcile(ctx, warehouseID, productID, uuid.Nil)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "75", sum.String())
}

func TestLedgerService_ConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestLedger()
	warehouseID, productID := uuid.New(), uuid.New()

	_, err := svc.AdjustStock(ctx, AdjustStockRequest{
		WarehouseID: warehouseID, ProductID: productID,
		NewQuantity: decimal.NewFromInt(100), Reason: inventory.MovementReasonInitialSetup,
	})
	require.NoError(t, err)

	// 20 goroutines each try to reserve 10; only 10 can succeed.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, ReservationRequest{
				WarehouseID: warehouseID, ProductID: productID, Quantity: decimal.NewFromInt(10),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)

	position, err := svc.GetPosition(ctx, warehouseID, productID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "100", position.ReservedQuantity.String())
	assert.True(t, position.AvailableQuantity.IsZero())
}
