package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/telemetry"
)

// GoodsReceiptService handles goods receipt creation and completion.
// Completion is the single multi-aggregate transition in the system: it
// posts one stock movement per accepted line, updates the order's receipt
// progress and status, and flips the receipt to its terminal state - all
// inside one transaction.
type GoodsReceiptService struct {
	scope            TransactionScope
	keys             *inventory.KeyMutex
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
	metrics          *telemetry.BusinessMetrics
}

// NewGoodsReceiptService creates a new GoodsReceiptService
func NewGoodsReceiptService(scope TransactionScope) *GoodsReceiptService {
	return &GoodsReceiptService{
		scope:          scope,
		keys:           inventory.NewKeyMutex(),
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
}

// SetKeyMutex shares the ledger's per-key mutex so completions and ledger
// writes on the same stock key wait instead of racing to a version conflict.
func (s *GoodsReceiptService) SetKeyMutex(keys *inventory.KeyMutex) {
	s.keys = keys
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *GoodsReceiptService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the store for client idempotency keys
func (s *GoodsReceiptService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// SetMetrics sets the business metrics recorder
func (s *GoodsReceiptService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// CreateFromOrder creates a draft receipt against a submitted order. Lines
// without explicit quantities are not defaulted; the caller states what
// physically arrived.
func (s *GoodsReceiptService) CreateFromOrder(ctx context.Context, req CreateReceiptRequest) (*ReceiptResponse, error) {
	receiptDate := time.Now()
	if req.ReceiptDate != nil {
		receiptDate = *req.ReceiptDate
	}

	var grn *procurement.GoodsReceiptNote
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}

		number, err := repos.ReceiptRepo().GenerateNumber(ctx)
		if err != nil {
			return err
		}

		received := make([]procurement.ReceivedValues, 0, len(req.Lines))
		for _, lr := range req.Lines {
			received = append(received, procurement.ReceivedValues{
				PurchaseOrderLineID: lr.PurchaseOrderLineID,
				QuantityReceived:    lr.QuantityReceived,
				QuantityAccepted:    lr.QuantityAccepted,
			})
		}

		g, err := procurement.NewGoodsReceiptNote(number, order, receiptDate, received)
		if err != nil {
			return err
		}
		g.Notes = req.Notes

		if err := repos.ReceiptRepo().Save(ctx, g); err != nil {
			return err
		}
		grn = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewReceiptResponse(grn), nil
}

// Complete completes a draft receipt. The client idempotency key guards
// against network retries: a key seen before means the completion already
// ran, and the call fails with ALREADY_COMPLETED without touching stock.
// Either every accepted line's movement, the order update and the receipt
// flip commit together, or none do.
func (s *GoodsReceiptService) Complete(ctx context.Context, req CompleteReceiptRequest) (*ReceiptResponse, error) {
	if err := s.checkIdempotency(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	lockKeys, err := s.positionLockKeys(ctx, req.GoodsReceiptID)
	if err != nil {
		return nil, err
	}
	unlock := s.keys.Lock(lockKeys...)
	defer unlock()

	var (
		grn       *procurement.GoodsReceiptNote
		order     *procurement.PurchaseOrder
		positions []*inventory.StockPosition
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		g, err := repos.ReceiptRepo().FindByID(ctx, req.GoodsReceiptID)
		if err != nil {
			return err
		}
		o, err := repos.OrderRepo().FindByID(ctx, g.PurchaseOrderID)
		if err != nil {
			return err
		}

		if err := g.Complete(); err != nil {
			return err
		}

		// One goods-receipt movement of +accepted per line.
		ref := &inventory.DocumentRef{Type: inventory.ReferenceTypeGoodsReceipt, ID: g.ID}
		for _, line := range g.AcceptedLines() {
			key := inventory.PositionKey{
				WarehouseID: g.WarehouseID,
				ProductID:   line.ProductID,
				VariantID:   line.VariantID,
			}
			position, err := repos.PositionRepo().GetOrCreate(ctx, key)
			if err != nil {
				return err
			}
			movement, err := position.ApplyDelta(line.QuantityAccepted, inventory.MovementReasonGoodsReceipt, ref, req.Actor)
			if err != nil {
				return err
			}
			if err := repos.PositionRepo().SaveWithVersion(ctx, position); err != nil {
				return err
			}
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}
			positions = append(positions, position)
		}

		if err := o.ApplyReceipt(g.ReceiptLines()); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithVersion(ctx, o); err != nil {
			return err
		}
		if err := repos.ReceiptRepo().SaveWithVersion(ctx, g); err != nil {
			return err
		}

		grn = g
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markProcessed(ctx, req.IdempotencyKey)
	if s.metrics != nil {
		s.metrics.RecordReceiptCompleted(ctx, len(grn.AcceptedLines()))
	}
	s.publishDomainEvents(ctx, grn)
	s.publishOrderEvents(ctx, order)
	for _, position := range positions {
		s.publishPositionEvents(ctx, position)
	}
	return NewReceiptResponse(grn), nil
}

// Cancel discards a draft receipt
func (s *GoodsReceiptService) Cancel(ctx context.Context, receiptID uuid.UUID) (*ReceiptResponse, error) {
	var grn *procurement.GoodsReceiptNote
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		g, err := repos.ReceiptRepo().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if err := g.Cancel(); err != nil {
			return err
		}
		if err := repos.ReceiptRepo().SaveWithVersion(ctx, g); err != nil {
			return err
		}
		grn = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, grn)
	return NewReceiptResponse(grn), nil
}

// Get returns a receipt with its lines
func (s *GoodsReceiptService) Get(ctx context.Context, receiptID uuid.UUID) (*ReceiptResponse, error) {
	var grn *procurement.GoodsReceiptNote
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		g, err := repos.ReceiptRepo().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		grn = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewReceiptResponse(grn), nil
}

// ListByOrder lists all receipts against a purchase order
func (s *GoodsReceiptService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ReceiptResponse, error) {
	var receipts []procurement.GoodsReceiptNote
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		gs, err := repos.ReceiptRepo().FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		receipts = gs
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		responses = append(responses, *NewReceiptResponse(&receipts[i]))
	}
	return responses, nil
}

// positionLockKeys names the stock keys the completion will write. Receipt
// lines are fixed at creation, so reading them ahead of the completion
// transaction is safe.
func (s *GoodsReceiptService) positionLockKeys(ctx context.Context, receiptID uuid.UUID) ([]string, error) {
	var keys []string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		g, err := repos.ReceiptRepo().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		for _, line := range g.AcceptedLines() {
			key := inventory.PositionKey{
				WarehouseID: g.WarehouseID,
				ProductID:   line.ProductID,
				VariantID:   line.VariantID,
			}
			keys = append(keys, key.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *GoodsReceiptService) checkIdempotency(ctx context.Context, key string) error {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || key == "" {
		return nil
	}
	processed, err := s.idempotencyStore.IsProcessed(ctx, "grn-complete:"+key)
	if err != nil {
		return err
	}
	if processed {
		return shared.ErrAlreadyCompleted
	}
	return nil
}

func (s *GoodsReceiptService) markProcessed(ctx context.Context, key string) {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || key == "" {
		return
	}
	// A failed mark only weakens retry detection; the receipt's own
	// terminal status still rejects re-completion.
	_, _ = s.idempotencyStore.MarkProcessed(ctx, "grn-complete:"+key, s.idempotencyCfg.TTL)
}

func (s *GoodsReceiptService) publishDomainEvents(ctx context.Context, g *procurement.GoodsReceiptNote) {
	if s.eventPublisher == nil || g == nil {
		return
	}
	events := g.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	g.ClearDomainEvents()
}

func (s *GoodsReceiptService) publishOrderEvents(ctx context.Context, o *procurement.PurchaseOrder) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}

// publishPositionEvents publishes the movement events queued on a position
// mutated by the completion, mirroring the ledger's publication.
func (s *GoodsReceiptService) publishPositionEvents(ctx context.Context, p *inventory.StockPosition) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}
