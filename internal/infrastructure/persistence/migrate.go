package persistence

import (
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/pricing"
	"github.com/inventra/backend/internal/domain/procurement"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every persisted aggregate.
// Intended for development and tests; production deployments run versioned
// migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&inventory.StockPosition{},
		&inventory.StockMovement{},
		&procurement.PurchaseOrder{},
		&procurement.PurchaseOrderLine{},
		&procurement.GoodsReceiptNote{},
		&procurement.GoodsReceiptLine{},
		&procurement.PurchaseInvoice{},
		&procurement.PurchaseInvoiceLine{},
		&procurement.SupplierPayment{},
		&pricing.Price{},
	)
}
