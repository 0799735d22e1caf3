package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// LedgerService is the single writer for stock quantities. Every mutation
// takes the position's key mutex, runs inside one transaction, and saves
// the aggregate with an optimistic version check, so invariants hold under
// concurrent callers.
type LedgerService struct {
	scope          TransactionScope
	keys           *inventory.KeyMutex
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope) *LedgerService {
	return &LedgerService{
		scope: scope,
		keys:  inventory.NewKeyMutex(),
	}
}

// Keys exposes the ledger's per-key mutex so other writers of stock
// positions (goods receipt completion) serialize on the same keys.
func (s *LedgerService) Keys() *inventory.KeyMutex {
	return s.keys
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *LedgerService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// AdjustStock sets a position's physical quantity to an absolute value,
// recording the difference as a movement. The position is created on first
// use of the key.
func (s *LedgerService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockPositionResponse, error) {
	if err := inventory.ValidateReason(req.Reason); err != nil {
		return nil, err
	}

	key := inventory.PositionKey{WarehouseID: req.WarehouseID, ProductID: req.ProductID, VariantID: req.VariantID}
	unlock := s.keys.Lock(key.String())
	defer unlock()

	var position *inventory.StockPosition
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PositionRepo().GetOrCreate(ctx, key)
		if err != nil {
			return err
		}
		movement, err := p.AdjustTo(req.NewQuantity, req.Reason, req.Actor)
		if err != nil {
			return err
		}
		if err := repos.PositionRepo().SaveWithVersion(ctx, p); err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		position = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(ctx, req.Reason)
	s.publishDomainEvents(ctx, position)
	return NewStockPositionResponse(position), nil
}

// PostMovement applies a signed delta to a position
func (s *LedgerService) PostMovement(ctx context.Context, req PostMovementRequest) (*StockMovementResponse, error) {
	if err := inventory.ValidateReason(req.Reason); err != nil {
		return nil, err
	}

	key := inventory.PositionKey{WarehouseID: req.WarehouseID, ProductID: req.ProductID, VariantID: req.VariantID}
	unlock := s.keys.Lock(key.String())
	defer unlock()

	var (
		position *inventory.StockPosition
		movement *inventory.StockMovement
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PositionRepo().GetOrCreate(ctx, key)
		if err != nil {
			return err
		}
		m, err := p.ApplyDelta(req.Delta, req.Reason, nil, req.Actor)
		if err != nil {
			return err
		}
		if err := repos.PositionRepo().SaveWithVersion(ctx, p); err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, m); err != nil {
			return err
		}
		position = p
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(ctx, req.Reason)
	s.publishDomainEvents(ctx, position)
	return NewStockMovementResponse(movement), nil
}

// Reserve places a hold on available stock for a sales document
func (s *LedgerService) Reserve(ctx context.Context, req ReservationRequest) (*StockPositionResponse, error) {
	return s.mutateReservation(ctx, req, func(p *inventory.StockPosition, ref *inventory.DocumentRef) (*inventory.StockMovement, error) {
		return p.Reserve(req.Quantity, ref, req.Actor)
	})
}

// Release returns a previously reserved quantity to availability
func (s *LedgerService) Release(ctx context.Context, req ReservationRequest) (*StockPositionResponse, error) {
	return s.mutateReservation(ctx, req, func(p *inventory.StockPosition, ref *inventory.DocumentRef) (*inventory.StockMovement, error) {
		return p.Release(req.Quantity, ref, req.Actor)
	})
}

func (s *LedgerService) mutateReservation(ctx context.Context, req ReservationRequest, mutate func(*inventory.StockPosition, *inventory.DocumentRef) (*inventory.StockMovement, error)) (*StockPositionResponse, error) {
	key := inventory.PositionKey{WarehouseID: req.WarehouseID, ProductID: req.ProductID, VariantID: req.VariantID}
	unlock := s.keys.Lock(key.String())
	defer unlock()

	var ref *inventory.DocumentRef
	if req.ReferenceID != nil {
		ref = &inventory.DocumentRef{Type: inventory.ReferenceTypeSalesOrder, ID: *req.ReferenceID}
	}

	var position *inventory.StockPosition
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PositionRepo().FindByKey(ctx, key)
		if err != nil {
			return err
		}
		movement, err := mutate(p, ref)
		if err != nil {
			return err
		}
		if err := repos.PositionRepo().SaveWithVersion(ctx, p); err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		position = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordReservation(ctx, req.WarehouseID)
	}
	s.publishDomainEvents(ctx, position)
	return NewStockPositionResponse(position), nil
}

// Transfer moves a quantity between two warehouses. Both sides commit or
// neither does; there is no state in which the stock exists in both or
// neither warehouse.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*StockPositionResponse, error) {
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and destination warehouse must differ")
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer quantity must be positive")
	}

	fromKey := inventory.PositionKey{WarehouseID: req.FromWarehouseID, ProductID: req.ProductID, VariantID: req.VariantID}
	toKey := inventory.PositionKey{WarehouseID: req.ToWarehouseID, ProductID: req.ProductID, VariantID: req.VariantID}
	unlock := s.keys.Lock(fromKey.String(), toKey.String())
	defer unlock()

	transferID := uuid.New()
	ref := &inventory.DocumentRef{Type: inventory.ReferenceTypeTransfer, ID: transferID}

	var source, dest *inventory.StockPosition
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		from, err := repos.PositionRepo().FindByKey(ctx, fromKey)
		if err != nil {
			return err
		}
		to, err := repos.PositionRepo().GetOrCreate(ctx, toKey)
		if err != nil {
			return err
		}

		out, err := from.ApplyDelta(req.Quantity.Neg(), inventory.MovementReasonTransferOut, ref, req.Actor)
		if err != nil {
			return err
		}
		in, err := to.ApplyDelta(req.Quantity, inventory.MovementReasonTransferIn, ref, req.Actor)
		if err != nil {
			return err
		}

		if err := repos.PositionRepo().SaveWithVersion(ctx, from); err != nil {
			return err
		}
		if err := repos.PositionRepo().SaveWithVersion(ctx, to); err != nil {
			return err
		}
		if err := repos.MovementRepo().CreateBatch(ctx, []*inventory.StockMovement{out, in}); err != nil {
			return err
		}
		source = from
		dest = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordMovement(ctx, inventory.MovementReasonTransferOut)
	s.recordMovement(ctx, inventory.MovementReasonTransferIn)
	s.publishDomainEvents(ctx, source)
	s.publishDomainEvents(ctx, dest)
	return NewStockPositionResponse(dest), nil
}

// GetPosition returns the position for a warehouse-product-variant key
func (s *LedgerService) GetPosition(ctx context.Context, warehouseID, productID, variantID uuid.UUID) (*StockPositionResponse, error) {
	key := inventory.PositionKey{WarehouseID: warehouseID, ProductID: productID, VariantID: variantID}

	var position *inventory.StockPosition
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PositionRepo().FindByKey(ctx, key)
		if err != nil {
			return err
		}
		position = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewStockPositionResponse(position), nil
}

// ListWarehousePositions lists positions in a warehouse
func (s *LedgerService) ListWarehousePositions(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockPositionResponse, error) {
	var positions []inventory.StockPosition
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ps, err := repos.PositionRepo().FindByWarehouse(ctx, warehouseID, filter)
		if err != nil {
			return err
		}
		positions = ps
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]StockPositionResponse, 0, len(positions))
	for i := range positions {
		responses = append(responses, *NewStockPositionResponse(&positions[i]))
	}
	return responses, nil
}

// GetAcrossWarehouses aggregates a product's stock over all warehouses.
// The read is a snapshot; it is not linearizable with concurrent writers.
func (s *LedgerService) GetAcrossWarehouses(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*ProductStockResponse, error) {
	var positions []inventory.StockPosition
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ps, err := repos.PositionRepo().FindByProduct(ctx, productID, variantID)
		if err != nil {
			return err
		}
		positions = ps
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &ProductStockResponse{
		ProductID:      productID,
		VariantID:      variantID,
		TotalPhysical:  decimal.Zero,
		TotalReserved:  decimal.Zero,
		TotalAvailable: decimal.Zero,
		Warehouses:     make([]WarehouseStockResponse, 0, len(positions)),
	}
	for i := range positions {
		p := &positions[i]
		resp.TotalPhysical = resp.TotalPhysical.Add(p.PhysicalQuantity)
		resp.TotalReserved = resp.TotalReserved.Add(p.ReservedQuantity)
		resp.TotalAvailable = resp.TotalAvailable.Add(p.AvailableQuantity())
		resp.Warehouses = append(resp.Warehouses, WarehouseStockResponse{
			WarehouseID:       p.WarehouseID,
			PhysicalQuantity:  p.PhysicalQuantity,
			ReservedQuantity:  p.ReservedQuantity,
			AvailableQuantity: p.AvailableQuantity(),
		})
	}
	return resp, nil
}

// GetMovements returns the movement history for a position key
func (s *LedgerService) GetMovements(ctx context.Context, warehouseID, productID, variantID uuid.UUID, filter shared.Filter) ([]StockMovementResponse, error) {
	key := inventory.PositionKey{WarehouseID: warehouseID, ProductID: productID, VariantID: variantID}

	var movements []inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PositionRepo().FindByKey(ctx, key)
		if err != nil {
			return err
		}
		ms, err := repos.MovementRepo().FindByPosition(ctx, p.ID, filter)
		if err != nil {
			return err
		}
		movements = ms
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]StockMovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, *NewStockMovementResponse(&movements[i]))
	}
	return responses, nil
}

// Reconcile verifies the movement log against a position's physical
// quantity, returning the summed delta and whether it matches.
func (s *LedgerService) Reconcile(ctx context.Context, warehouseID, productID, variantID uuid.UUID) (decimal.Decimal, bool, error) {
	key := inventory.PositionKey{WarehouseID: warehouseID, ProductID: productID, VariantID: variantID}

	var (
		sum decimal.Decimal
		ok  bool
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PositionRepo().FindByKey(ctx, key)
		if err != nil {
			return err
		}
		total, err := repos.MovementRepo().SumDeltaByPosition(ctx, p.ID)
		if err != nil {
			return err
		}
		sum = total
		ok = total.Equal(p.PhysicalQuantity)
		return nil
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return sum, ok, nil
}

func (s *LedgerService) recordMovement(ctx context.Context, reason inventory.MovementReason) {
	if s.metrics != nil {
		s.metrics.RecordStockMovement(ctx, reason.String())
	}
}

// publishDomainEvents publishes all pending domain events from the position
func (s *LedgerService) publishDomainEvents(ctx context.Context, p *inventory.StockPosition) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish events (errors are logged by the event bus, not propagated)
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}
