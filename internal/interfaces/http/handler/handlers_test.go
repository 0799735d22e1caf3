package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	inventoryapp "github.com/inventra/backend/internal/application/inventory"
	pricingapp "github.com/inventra/backend/internal/application/pricing"
	procurementapp "github.com/inventra/backend/internal/application/procurement"
	"github.com/inventra/backend/internal/infrastructure/persistence"
	"github.com/inventra/backend/internal/interfaces/http/dto"
	"github.com/inventra/backend/internal/interfaces/http/middleware"
	"github.com/inventra/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestServer wires the full API against a throwaway sqlite database
// so the tests exercise the same stack requests hit in production.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	invScope := persistence.NewGormInventoryTransactionScope(db)
	procScope := persistence.NewGormProcurementTransactionScope(db)

	ledger := inventoryapp.NewLedgerService(invScope)
	orders := procurementapp.NewPurchaseOrderService(procScope)
	receipts := procurementapp.NewGoodsReceiptService(procScope)
	invoices := procurementapp.NewInvoiceService(procScope)
	payments := procurementapp.NewPaymentService(procScope)
	prices := pricingapp.NewPriceService(persistence.NewGormPriceRepository(db))
	orders.SetPriceResolver(prices)
	receipts.SetKeyMutex(ledger.Keys())

	engine := gin.New()
	router.NewRouter(engine).
		Register(NewStockHandler(ledger)).
		Register(NewPurchaseOrderHandler(orders, receipts)).
		Register(NewGoodsReceiptHandler(receipts)).
		Register(NewInvoiceHandler(invoices, payments)).
		Register(NewPaymentHandler(payments)).
		Register(NewPriceHandler(prices)).
		Setup()
	return engine
}

// doJSON performs a request with a JSON body and decodes the envelope
func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// dataAs re-marshals the envelope's data field into a typed value
func dataAs[T any](t *testing.T, resp dto.Response) T {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// get is a shorthand for a body-less GET request
func get(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	return doJSON(t, engine, http.MethodGet, path, nil, nil)
}
