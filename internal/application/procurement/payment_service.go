package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/telemetry"
)

// PaymentService handles supplier payments. A payment and the invoice it
// settles always change in the same transaction: completing applies the
// amount, transitioning away from completed reverses it, and the invoice's
// derived status follows.
type PaymentService struct {
	scope            TransactionScope
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
	metrics          *telemetry.BusinessMetrics
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope) *PaymentService {
	return &PaymentService{
		scope:          scope,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the store for client idempotency keys
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// SetMetrics sets the business metrics recorder
func (s *PaymentService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// Create creates a pending payment against an invoice. An amount that
// would push the invoice's paid total past its total is rejected with
// OVERPAYMENT at creation, before the payment ever exists. The client
// idempotency key guards a retried create from producing two payments.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	if err := s.checkIdempotency(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var payment *procurement.SupplierPayment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, req.PurchaseInvoiceID)
		if err != nil {
			return err
		}
		if invoice.Cancelled {
			return shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled invoice")
		}
		if req.Amount.GreaterThan(invoice.Balance()) {
			return shared.ErrOverpayment
		}

		number, err := repos.PaymentRepo().GenerateNumber(ctx)
		if err != nil {
			return err
		}

		p, err := procurement.NewSupplierPayment(number, invoice.ID, invoice.SupplierID, req.Amount,
			procurement.PaymentMethod(req.Method),
			procurement.PaymentReference{
				BankName:       req.BankName,
				ChequeNumber:   req.ChequeNumber,
				TransactionRef: req.TransactionRef,
			},
			paymentDate)
		if err != nil {
			return err
		}
		p.Notes = req.Notes

		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markProcessed(ctx, req.IdempotencyKey)
	s.recordPayment(ctx, payment)
	return NewPaymentResponse(payment), nil
}

// StartProcessing moves a payment to processing
func (s *PaymentService) StartProcessing(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	return s.transition(ctx, paymentID, func(p *procurement.SupplierPayment, _ *procurement.PurchaseInvoice) error {
		return p.StartProcessing()
	})
}

// Complete marks a payment completed and applies its amount to the invoice
func (s *PaymentService) Complete(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	return s.transition(ctx, paymentID, func(p *procurement.SupplierPayment, inv *procurement.PurchaseInvoice) error {
		if err := p.Complete(); err != nil {
			return err
		}
		return inv.ApplyPayment(p.Amount)
	})
}

// Fail marks a payment failed, reversing its contribution if it was completed
func (s *PaymentService) Fail(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	return s.transition(ctx, paymentID, func(p *procurement.SupplierPayment, inv *procurement.PurchaseInvoice) error {
		wasCompleted := p.IsCompleted()
		if err := p.Fail(); err != nil {
			return err
		}
		if wasCompleted {
			return inv.ReversePayment(p.Amount)
		}
		return nil
	})
}

// Cancel cancels a payment, reversing its contribution if it was completed
func (s *PaymentService) Cancel(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	return s.transition(ctx, paymentID, func(p *procurement.SupplierPayment, inv *procurement.PurchaseInvoice) error {
		wasCompleted := p.IsCompleted()
		if err := p.Cancel(); err != nil {
			return err
		}
		if wasCompleted {
			return inv.ReversePayment(p.Amount)
		}
		return nil
	})
}

// Get returns a payment
func (s *PaymentService) Get(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	var payment *procurement.SupplierPayment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewPaymentResponse(payment), nil
}

// ListByInvoice lists all payments against an invoice
func (s *PaymentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	var payments []procurement.SupplierPayment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ps, err := repos.PaymentRepo().FindByInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		payments = ps
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *NewPaymentResponse(&payments[i]))
	}
	return responses, nil
}

func (s *PaymentService) transition(ctx context.Context, paymentID uuid.UUID, mutate func(*procurement.SupplierPayment, *procurement.PurchaseInvoice) error) (*PaymentResponse, error) {
	var (
		payment *procurement.SupplierPayment
		invoice *procurement.PurchaseInvoice
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err := repos.InvoiceRepo().FindByID(ctx, p.PurchaseInvoiceID)
		if err != nil {
			return err
		}

		if err := mutate(p, inv); err != nil {
			return err
		}

		if err := repos.PaymentRepo().SaveWithVersion(ctx, p); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithVersion(ctx, inv); err != nil {
			return err
		}
		payment = p
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordPayment(ctx, payment)
	s.publishPaymentEvents(ctx, payment)
	s.publishInvoiceEvents(ctx, invoice)
	return NewPaymentResponse(payment), nil
}

func (s *PaymentService) recordPayment(ctx context.Context, p *procurement.SupplierPayment) {
	if s.metrics == nil || p == nil {
		return
	}
	s.metrics.RecordPayment(ctx, p.Method.String(), p.Status.String())
	if p.IsCompleted() {
		s.metrics.RecordPaymentAmount(ctx, p.Method.String(), p.Amount)
	}
}

func (s *PaymentService) checkIdempotency(ctx context.Context, key string) error {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || key == "" {
		return nil
	}
	processed, err := s.idempotencyStore.IsProcessed(ctx, "payment-create:"+key)
	if err != nil {
		return err
	}
	if processed {
		return shared.NewDomainError("ALREADY_EXISTS", "Payment was already created for this idempotency key")
	}
	return nil
}

func (s *PaymentService) markProcessed(ctx context.Context, key string) {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || key == "" {
		return
	}
	_, _ = s.idempotencyStore.MarkProcessed(ctx, "payment-create:"+key, s.idempotencyCfg.TTL)
}

func (s *PaymentService) publishPaymentEvents(ctx context.Context, p *procurement.SupplierPayment) {
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

func (s *PaymentService) publishInvoiceEvents(ctx context.Context, inv *procurement.PurchaseInvoice) {
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
