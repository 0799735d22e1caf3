package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StockPositionSortFields contains allowed sort fields for stock positions
var StockPositionSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"warehouse_id":      true,
	"product_id":        true,
	"physical_quantity": true,
	"reserved_quantity": true,
	"location":          true,
}

// StockMovementSortFields contains allowed sort fields for stock movements
var StockMovementSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"occurred_at": true,
	"reason":      true,
	"delta":       true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"supplier_id":  true,
	"status":       true,
	"total_amount": true,
	"submitted_at": true,
}

// GoodsReceiptSortFields contains allowed sort fields for goods receipt notes
var GoodsReceiptSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"receipt_number": true,
	"status":         true,
	"receipt_date":   true,
	"completed_at":   true,
}

// PurchaseInvoiceSortFields contains allowed sort fields for purchase invoices
var PurchaseInvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"supplier_id":    true,
	"status":         true,
	"total_amount":   true,
	"paid_amount":    true,
	"due_date":       true,
}

// SupplierPaymentSortFields contains allowed sort fields for supplier payments
var SupplierPaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_number": true,
	"status":         true,
	"amount":         true,
	"payment_date":   true,
}
