package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSupplierPaymentRepository implements SupplierPaymentRepository using GORM
type GormSupplierPaymentRepository struct {
	db *gorm.DB
}

// NewGormSupplierPaymentRepository creates a new GormSupplierPaymentRepository
func NewGormSupplierPaymentRepository(db *gorm.DB) *GormSupplierPaymentRepository {
	return &GormSupplierPaymentRepository{db: db}
}

// FindByID finds a supplier payment by its ID
func (r *GormSupplierPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.SupplierPayment, error) {
	var payment procurement.SupplierPayment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByInvoice finds all payments against an invoice
func (r *GormSupplierPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]procurement.SupplierPayment, error) {
	var payments []procurement.SupplierPayment
	err := r.db.WithContext(ctx).
		Where("purchase_invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// List lists supplier payments
func (r *GormSupplierPaymentRepository) List(ctx context.Context, filter shared.Filter) ([]procurement.SupplierPayment, error) {
	var payments []procurement.SupplierPayment
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.SupplierPayment{}), filter)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormSupplierPaymentRepository) Save(ctx context.Context, payment *procurement.SupplierPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SaveWithVersion saves a payment only if its stored version matches the
// version the aggregate was loaded with
func (r *GormSupplierPaymentRepository) SaveWithVersion(ctx context.Context, payment *procurement.SupplierPayment) error {
	result := r.db.WithContext(ctx).Model(&procurement.SupplierPayment{}).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Updates(map[string]interface{}{
			"status":          payment.Status,
			"amount":          payment.Amount,
			"method":          payment.Method,
			"bank_name":       payment.Reference.BankName,
			"cheque_number":   payment.Reference.ChequeNumber,
			"transaction_ref": payment.Reference.TransactionRef,
			"payment_date":    payment.PaymentDate,
			"notes":           payment.Notes,
			"version":         payment.Version,
			"updated_at":      payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateNumber generates the next payment number in the PAY-YYYY-NNNNN format
func (r *GormSupplierPaymentRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &procurement.SupplierPayment{}, "payment_number", "PAY")
}

func (r *GormSupplierPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, SupplierPaymentSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

var _ procurement.SupplierPaymentRepository = (*GormSupplierPaymentRepository)(nil)
