package procurement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// In-memory repositories backing the workflow tests. They are deliberately
// not transactional; the tests assert service-level behavior, and the
// SQL-backed rollback path is covered by the persistence tests.

type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*procurement.PurchaseOrder
	seq    int
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[uuid.UUID]*procurement.PurchaseOrder)}
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Lines = append([]procurement.PurchaseOrderLine(nil), o.Lines...)
	return &cp, nil
}

func (r *memoryOrderRepo) FindByNumber(_ context.Context, number string) (*procurement.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepo) FindBySupplier(_ context.Context, supplierID uuid.UUID, _ shared.Filter) ([]procurement.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []procurement.PurchaseOrder
	for _, o := range r.orders {
		if o.SupplierID == supplierID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) FindByStatus(_ context.Context, status procurement.PurchaseOrderStatus, _ shared.Filter) ([]procurement.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []procurement.PurchaseOrder
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) List(_ context.Context, _ shared.Filter) ([]procurement.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]procurement.PurchaseOrder, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memoryOrderRepo) Save(_ context.Context, order *procurement.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	cp.Lines = append([]procurement.PurchaseOrderLine(nil), order.Lines...)
	r.orders[order.ID] = &cp
	return nil
}

func (r *memoryOrderRepo) SaveWithVersion(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.Save(ctx, order)
}

func (r *memoryOrderRepo) GenerateNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("PO-%04d", r.seq), nil
}

func (r *memoryOrderRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

type memoryReceiptRepo struct {
	mu       sync.Mutex
	receipts map[uuid.UUID]*procurement.GoodsReceiptNote
	seq      int
}

func newMemoryReceiptRepo() *memoryReceiptRepo {
	return &memoryReceiptRepo{receipts: make(map[uuid.UUID]*procurement.GoodsReceiptNote)}
}

func (r *memoryReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*procurement.GoodsReceiptNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.receipts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *g
	cp.Lines = append([]procurement.GoodsReceiptLine(nil), g.Lines...)
	return &cp, nil
}

func (r *memoryReceiptRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]procurement.GoodsReceiptNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []procurement.GoodsReceiptNote
	for _, g := range r.receipts {
		if g.PurchaseOrderID == orderID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memoryReceiptRepo) List(_ context.Context, _ shared.Filter) ([]procurement.GoodsReceiptNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]procurement.GoodsReceiptNote, 0, len(r.receipts))
	for _, g := range r.receipts {
		out = append(out, *g)
	}
	return out, nil
}

func (r *memoryReceiptRepo) Save(_ context.Context, grn *procurement.GoodsReceiptNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *grn
	cp.Lines = append([]procurement.GoodsReceiptLine(nil), grn.Lines...)
	r.receipts[grn.ID] = &cp
	return nil
}

func (r *memoryReceiptRepo) SaveWithVersion(ctx context.Context, grn *procurement.GoodsReceiptNote) error {
	return r.Save(ctx, grn)
}

func (r *memoryReceiptRepo) GenerateNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("GRN-%04d", r.seq), nil
}

type memoryInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*procurement.PurchaseInvoice
	seq      int
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: make(map[uuid.UUID]*procurement.PurchaseInvoice)}
}

func (r *memoryInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*procurement.PurchaseInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	cp.Lines = append([]procurement.PurchaseInvoiceLine(nil), inv.Lines...)
	return &cp, nil
}

func (r *memoryInvoiceRepo) FindByReceipt(_ context.Context, goodsReceiptID uuid.UUID) (*procurement.PurchaseInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.GoodsReceiptID != nil && *inv.GoodsReceiptID == goodsReceiptID && !inv.Cancelled {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryInvoiceRepo) FindBySupplier(_ context.Context, supplierID uuid.UUID, _ shared.Filter) ([]procurement.PurchaseInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []procurement.PurchaseInvoice
	for _, inv := range r.invoices {
		if inv.SupplierID == supplierID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryInvoiceRepo) FindOutstanding(_ context.Context, _ shared.Filter) ([]procurement.PurchaseInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []procurement.PurchaseInvoice
	for _, inv := range r.invoices {
		if !inv.Cancelled && inv.Balance().GreaterThan(decimal.Zero) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryInvoiceRepo) List(_ context.Context, _ shared.Filter) ([]procurement.PurchaseInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]procurement.PurchaseInvoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryInvoiceRepo) Save(_ context.Context, invoice *procurement.PurchaseInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *invoice
	cp.Lines = append([]procurement.PurchaseInvoiceLine(nil), invoice.Lines...)
	r.invoices[invoice.ID] = &cp
	return nil
}

func (r *memoryInvoiceRepo) SaveWithVersion(ctx context.Context, invoice *procurement.PurchaseInvoice) error {
	return r.Save(ctx, invoice)
}

func (r *memoryInvoiceRepo) GenerateNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("INV-%04d", r.seq), nil
}

type memoryPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*procurement.SupplierPayment
	seq      int
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: make(map[uuid.UUID]*procurement.SupplierPayment)}
}

func (r *memoryPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*procurement.SupplierPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPaymentRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]procurement.SupplierPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []procurement.SupplierPayment
	for _, p := range r.payments {
		if p.PurchaseInvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) List(_ context.Context, _ shared.Filter) ([]procurement.SupplierPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]procurement.SupplierPayment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryPaymentRepo) Save(_ context.Context, payment *procurement.SupplierPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

func (r *memoryPaymentRepo) SaveWithVersion(ctx context.Context, payment *procurement.SupplierPayment) error {
	return r.Save(ctx, payment)
}

func (r *memoryPaymentRepo) GenerateNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("PAY-%04d", r.seq), nil
}

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

func (r *memoryPositionRepo) SaveWithVersion(ctx context.Context, position *inventory.StockPosition) error {
	return r.Save(ctx, position)
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

// memoryIdempotencyStore is an in-memory shared.IdempotencyStore.
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: make(map[string]time.Time)}
}

func (s *memoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.keys[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.keys[key] = time.Now().Add(ttl)
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.keys[key]
	return ok && time.Now().Before(expiry), nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

// testEnv bundles the services and repositories for workflow tests.
type testEnv struct {
	orders    *PurchaseOrderService
	receipts  *GoodsReceiptService
	invoices  *InvoiceService
	payments  *PaymentService
	positions *memoryPositionRepo
	movements *memoryMovementRepo
	idem      *memoryIdempotencyStore
}

func newTestEnv() *testEnv {
	positions := newMemoryPositionRepo()
	movements := newMemoryMovementRepo()
	idem := newMemoryIdempotencyStore()
	scope := NewNoOpTransactionScope(
		newMemoryOrderRepo(),
		newMemoryReceiptRepo(),
		newMemoryInvoiceRepo(),
		newMemoryPaymentRepo(),
		positions,
		movements,
	)

	receipts := NewGoodsReceiptService(scope)
	receipts.SetIdempotencyStore(idem, shared.DefaultIdempotencyConfig())
	payments := NewPaymentService(scope)
	payments.SetIdempotencyStore(idem, shared.DefaultIdempotencyConfig())

	return &testEnv{
		orders:    NewPurchaseOrderService(scope),
		receipts:  receipts,
		invoices:  NewInvoiceService(scope),
		payments:  payments,
		positions: positions,
		movements: movements,
		idem:      idem,
	}
}
