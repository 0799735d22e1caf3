package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceResolver resolves a unit price for a variant when the caller does
// not supply one explicitly.
type PriceResolver interface {
	// ResolveUnitPrice resolves the current unit price for a variant and
	// price type; an empty priceType resolves the standard price.
	ResolveUnitPrice(ctx context.Context, variantID uuid.UUID, priceType string) (decimal.Decimal, error)
}

// PurchaseOrderService handles the ordering side of procurement
type PurchaseOrderService struct {
	scope          TransactionScope
	priceResolver  PriceResolver
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope TransactionScope) *PurchaseOrderService {
	return &PurchaseOrderService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPriceResolver sets the resolver used for lines without an explicit price
func (s *PurchaseOrderService) SetPriceResolver(resolver PriceResolver) {
	s.priceResolver = resolver
}

// Create creates a draft purchase order, optionally with initial lines
func (s *PurchaseOrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	var order *procurement.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.OrderRepo().GenerateNumber(ctx)
		if err != nil {
			return err
		}

		o, err := procurement.NewPurchaseOrder(number, req.SupplierID, req.WarehouseID)
		if err != nil {
			return err
		}
		o.ExpectedDate = req.ExpectedDate
		o.Notes = req.Notes

		for _, lr := range req.Lines {
			values, err := s.toLineValues(ctx, lr)
			if err != nil {
				return err
			}
			if _, err := o.AddLine(values); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, order)
	return NewOrderResponse(order), nil
}

// AddLine adds a line to a draft order
func (s *PurchaseOrderService) AddLine(ctx context.Context, orderID uuid.UUID, req LineRequest) (*OrderResponse, error) {
	return s.mutateOrder(ctx, orderID, func(ctx context.Context, o *procurement.PurchaseOrder) error {
		values, err := s.toLineValues(ctx, req)
		if err != nil {
			return err
		}
		_, err = o.AddLine(values)
		return err
	})
}

// UpdateLine replaces a line's values on a draft order
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, req LineRequest) (*OrderResponse, error) {
	return s.mutateOrder(ctx, orderID, func(ctx context.Context, o *procurement.PurchaseOrder) error {
		values, err := s.toLineValues(ctx, req)
		if err != nil {
			return err
		}
		return o.UpdateLine(lineID, values)
	})
}

// RemoveLine removes a line from a draft order
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderResponse, error) {
	return s.mutateOrder(ctx, orderID, func(_ context.Context, o *procurement.PurchaseOrder) error {
		return o.RemoveLine(lineID)
	})
}

// Submit submits a draft order
func (s *PurchaseOrderService) Submit(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutateOrder(ctx, orderID, func(_ context.Context, o *procurement.PurchaseOrder) error {
		return o.Submit()
	})
}

// Cancel cancels an order before any goods have been received
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutateOrder(ctx, orderID, func(_ context.Context, o *procurement.PurchaseOrder) error {
		return o.Cancel()
	})
}

// Get returns an order with its lines
func (s *PurchaseOrderService) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var order *procurement.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderResponse(order), nil
}

// List lists orders
func (s *PurchaseOrderService) List(ctx context.Context, filter shared.Filter) ([]OrderResponse, error) {
	var orders []procurement.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		os, err := repos.OrderRepo().List(ctx, filter)
		if err != nil {
			return err
		}
		orders = os
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *NewOrderResponse(&orders[i]))
	}
	return responses, nil
}

func (s *PurchaseOrderService) mutateOrder(ctx context.Context, orderID uuid.UUID, mutate func(context.Context, *procurement.PurchaseOrder) error) (*OrderResponse, error) {
	var order *procurement.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := mutate(ctx, o); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithVersion(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, order)
	return NewOrderResponse(order), nil
}

func (s *PurchaseOrderService) toLineValues(ctx context.Context, req LineRequest) (procurement.LineValues, error) {
	values := procurement.LineValues{
		ProductID:      req.ProductID,
		VariantID:      req.VariantID,
		Quantity:       req.Quantity,
		TaxPercentage:  req.TaxPercentage,
		DiscountAmount: req.DiscountAmount,
	}

	if req.UnitPrice != nil {
		values.UnitPrice = *req.UnitPrice
		return values, nil
	}
	if s.priceResolver == nil {
		return procurement.LineValues{}, shared.NewDomainError("INVALID_INPUT", "Unit price is required")
	}
	price, err := s.priceResolver.ResolveUnitPrice(ctx, req.VariantID, req.PriceType)
	if err != nil {
		return procurement.LineValues{}, err
	}
	values.UnitPrice = price
	return values, nil
}

// publishDomainEvents publishes all pending domain events from the order
func (s *PurchaseOrderService) publishDomainEvents(ctx context.Context, o *procurement.PurchaseOrder) {
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
