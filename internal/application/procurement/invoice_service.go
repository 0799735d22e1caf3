package procurement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
)

// InvoiceService handles purchase invoice creation and queries. Invoice
// status is derived from amounts and dates, never set directly; the only
// mutations here are cancellation and the payment applications driven by
// PaymentService.
type InvoiceService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope TransactionScope) *InvoiceService {
	return &InvoiceService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// QuickCreateFromReceipt creates an invoice billing a completed receipt's
// accepted lines. At most one non-cancelled invoice may exist per receipt;
// a second attempt fails with DUPLICATE_INVOICE.
func (s *InvoiceService) QuickCreateFromReceipt(ctx context.Context, req QuickCreateInvoiceRequest) (*InvoiceResponse, error) {
	var invoice *procurement.PurchaseInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		grn, err := repos.ReceiptRepo().FindByID(ctx, req.GoodsReceiptID)
		if err != nil {
			return err
		}

		_, err = repos.InvoiceRepo().FindByReceipt(ctx, grn.ID)
		if err == nil {
			return shared.ErrDuplicateInvoice
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		order, err := repos.OrderRepo().FindByID(ctx, grn.PurchaseOrderID)
		if err != nil {
			return err
		}

		number, err := repos.InvoiceRepo().GenerateNumber(ctx)
		if err != nil {
			return err
		}

		inv, err := procurement.NewInvoiceFromReceipt(number, grn, order.SupplierID, req.DueDate)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewInvoiceResponse(invoice), nil
}

// CreateAdHoc creates an invoice against a purchase order from explicit lines
func (s *InvoiceService) CreateAdHoc(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var invoice *procurement.PurchaseInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}

		number, err := repos.InvoiceRepo().GenerateNumber(ctx)
		if err != nil {
			return err
		}

		lines := make([]procurement.InvoiceLineValues, 0, len(req.Lines))
		for _, lr := range req.Lines {
			if lr.UnitPrice == nil {
				return shared.NewDomainError("INVALID_INPUT", "Unit price is required on invoice lines")
			}
			lines = append(lines, procurement.InvoiceLineValues{
				ProductID:      lr.ProductID,
				VariantID:      lr.VariantID,
				Quantity:       lr.Quantity,
				UnitPrice:      *lr.UnitPrice,
				TaxPercentage:  lr.TaxPercentage,
				DiscountAmount: lr.DiscountAmount,
			})
		}

		inv, err := procurement.NewPurchaseInvoice(number, order.ID, nil, order.SupplierID, lines, req.DueDate)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewInvoiceResponse(invoice), nil
}

// Cancel cancels an invoice with no applied payments
func (s *InvoiceService) Cancel(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var invoice *procurement.PurchaseInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.Cancel(); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithVersion(ctx, inv); err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, invoice)
	return NewInvoiceResponse(invoice), nil
}

// Get returns an invoice with its lines; the status is refreshed against
// the current time so a past-due invoice reads as overdue
func (s *InvoiceService) Get(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var invoice *procurement.PurchaseInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.RefreshStatus(time.Now())
	return NewInvoiceResponse(invoice), nil
}

// List lists invoices with freshly derived statuses
func (s *InvoiceService) List(ctx context.Context, filter shared.Filter) ([]InvoiceResponse, error) {
	return s.list(ctx, func(ctx context.Context, repos TransactionalRepositories) ([]procurement.PurchaseInvoice, error) {
		return repos.InvoiceRepo().List(ctx, filter)
	})
}

// ListOutstanding lists non-cancelled invoices with a positive balance
func (s *InvoiceService) ListOutstanding(ctx context.Context, filter shared.Filter) ([]InvoiceResponse, error) {
	return s.list(ctx, func(ctx context.Context, repos TransactionalRepositories) ([]procurement.PurchaseInvoice, error) {
		return repos.InvoiceRepo().FindOutstanding(ctx, filter)
	})
}

func (s *InvoiceService) list(ctx context.Context, find func(context.Context, TransactionalRepositories) ([]procurement.PurchaseInvoice, error)) ([]InvoiceResponse, error) {
	var invoices []procurement.PurchaseInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		is, err := find(ctx, repos)
		if err != nil {
			return err
		}
		invoices = is
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		invoices[i].RefreshStatus(now)
		responses = append(responses, *NewInvoiceResponse(&invoices[i]))
	}
	return responses, nil
}

func (s *InvoiceService) publishDomainEvents(ctx context.Context, inv *procurement.PurchaseInvoice) {
	if s.eventPublisher == nil || inv == nil {
		return
	}
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	inv.ClearDomainEvents()
}
