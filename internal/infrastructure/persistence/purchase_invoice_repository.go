package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPurchaseInvoiceRepository implements PurchaseInvoiceRepository using GORM
type GormPurchaseInvoiceRepository struct {
	db *gorm.DB
}

// NewGormPurchaseInvoiceRepository creates a new GormPurchaseInvoiceRepository
func NewGormPurchaseInvoiceRepository(db *gorm.DB) *GormPurchaseInvoiceRepository {
	return &GormPurchaseInvoiceRepository{db: db}
}

// FindByID finds a purchase invoice with its lines
func (r *GormPurchaseInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseInvoice, error) {
	var invoice procurement.PurchaseInvoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByReceipt finds the non-cancelled invoice for a goods receipt. At most
// one such invoice exists; cancelled invoices do not block re-billing.
func (r *GormPurchaseInvoiceRepository) FindByReceipt(ctx context.Context, goodsReceiptID uuid.UUID) (*procurement.PurchaseInvoice, error) {
	var invoice procurement.PurchaseInvoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("goods_receipt_id = ? AND cancelled = ?", goodsReceiptID, false).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindBySupplier finds invoices for a supplier
func (r *GormPurchaseInvoiceRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseInvoice, error) {
	var invoices []procurement.PurchaseInvoice
	query := r.db.WithContext(ctx).Model(&procurement.PurchaseInvoice{}).
		Where("supplier_id = ?", supplierID)
	query = r.applyFilter(query, filter)

	if err := query.Preload("Lines").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOutstanding finds non-cancelled invoices with a positive balance
func (r *GormPurchaseInvoiceRepository) FindOutstanding(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseInvoice, error) {
	var invoices []procurement.PurchaseInvoice
	query := r.db.WithContext(ctx).Model(&procurement.PurchaseInvoice{}).
		Where("cancelled = ? AND paid_amount < total_amount", false)
	query = r.applyFilter(query, filter)

	if err := query.Preload("Lines").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// List lists purchase invoices
func (r *GormPurchaseInvoiceRepository) List(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseInvoice, error) {
	var invoices []procurement.PurchaseInvoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.PurchaseInvoice{}), filter)

	if err := query.Preload("Lines").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice and its lines
func (r *GormPurchaseInvoiceRepository) Save(ctx context.Context, invoice *procurement.PurchaseInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(invoice).Error; err != nil {
			return err
		}
		return r.replaceLines(tx, invoice)
	})
}

// SaveWithVersion saves an invoice only if its stored version matches the
// version the aggregate was loaded with. Payment application flows through
// here so concurrent payments cannot both push the paid amount past the total.
func (r *GormPurchaseInvoiceRepository) SaveWithVersion(ctx context.Context, invoice *procurement.PurchaseInvoice) error {
	result := r.db.WithContext(ctx).Model(&procurement.PurchaseInvoice{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(map[string]interface{}{
			"status":      invoice.Status,
			"paid_amount": invoice.PaidAmount,
			"due_date":    invoice.DueDate,
			"cancelled":   invoice.Cancelled,
			"notes":       invoice.Notes,
			"version":     invoice.Version,
			"updated_at":  invoice.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormPurchaseInvoiceRepository) replaceLines(tx *gorm.DB, invoice *procurement.PurchaseInvoice) error {
	currentLineIDs := make([]uuid.UUID, len(invoice.Lines))
	for i := range invoice.Lines {
		currentLineIDs[i] = invoice.Lines[i].ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("purchase_invoice_id = ? AND id NOT IN ?", invoice.ID, currentLineIDs).
			Delete(&procurement.PurchaseInvoiceLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("purchase_invoice_id = ?", invoice.ID).
			Delete(&procurement.PurchaseInvoiceLine{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Lines {
		invoice.Lines[i].PurchaseInvoiceID = invoice.ID
		if err := tx.Save(&invoice.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateNumber generates the next invoice number in the INV-YYYY-NNNNN format
func (r *GormPurchaseInvoiceRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &procurement.PurchaseInvoice{}, "invoice_number", "INV")
}

func (r *GormPurchaseInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, PurchaseInvoiceSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

var _ procurement.PurchaseInvoiceRepository = (*GormPurchaseInvoiceRepository)(nil)
