package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inventoryapp "github.com/inventra/backend/internal/application/inventory"
	pricingapp "github.com/inventra/backend/internal/application/pricing"
	procurementapp "github.com/inventra/backend/internal/application/procurement"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/cache"
	"github.com/inventra/backend/internal/infrastructure/config"
	"github.com/inventra/backend/internal/infrastructure/event"
	"github.com/inventra/backend/internal/infrastructure/logger"
	"github.com/inventra/backend/internal/infrastructure/persistence"
	"github.com/inventra/backend/internal/infrastructure/telemetry"
	"github.com/inventra/backend/internal/interfaces/http/handler"
	"github.com/inventra/backend/internal/interfaces/http/middleware"
	"github.com/inventra/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Inventra Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Outside production the schema is migrated on boot; production uses cmd/migrate.
	if cfg.App.Env != "production" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate database schema", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	// Initialize OpenTelemetry metrics (if enabled)
	var businessMetrics *telemetry.BusinessMetrics
	var httpMetrics *middleware.HTTPMetrics
	if cfg.Telemetry.Enabled {
		meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ExportInterval:    cfg.Telemetry.ExportInterval,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		meter := meterProvider.Meter("inventra")
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meter,
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		httpMetrics, err = middleware.NewHTTPMetrics(meter)
		if err != nil {
			log.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
		}
		log.Info("Telemetry enabled",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Duration("export_interval", cfg.Telemetry.ExportInterval),
		)
	}

	// Idempotency store: Redis when configured, in-process otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		idempotencyStore = redisStore
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		memStore := cache.NewInMemoryIdempotencyStore()
		defer func() {
			_ = memStore.Close()
		}()
		idempotencyStore = memStore
		log.Info("Using in-memory idempotency store")
	}
	idempotencyCfg := shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}

	// Initialize transaction scopes and application services
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	procurementScope := persistence.NewGormProcurementTransactionScope(db.DB)

	ledgerService := inventoryapp.NewLedgerService(inventoryScope)
	purchaseOrderService := procurementapp.NewPurchaseOrderService(procurementScope)
	goodsReceiptService := procurementapp.NewGoodsReceiptService(procurementScope)
	invoiceService := procurementapp.NewInvoiceService(procurementScope)
	paymentService := procurementapp.NewPaymentService(procurementScope)
	priceService := pricingapp.NewPriceService(persistence.NewGormPriceRepository(db.DB))

	// Order lines without an explicit unit price resolve through the price engine
	purchaseOrderService.SetPriceResolver(priceService)

	// Receipt completion writes stock positions, so it serializes on the
	// same per-key mutex the ledger uses.
	goodsReceiptService.SetKeyMutex(ledgerService.Keys())

	goodsReceiptService.SetIdempotencyStore(idempotencyStore, idempotencyCfg)
	paymentService.SetIdempotencyStore(idempotencyStore, idempotencyCfg)

	if businessMetrics != nil {
		ledgerService.SetMetrics(businessMetrics)
		goodsReceiptService.SetMetrics(businessMetrics)
		paymentService.SetMetrics(businessMetrics)
	}

	// Initialize event bus and subscribe the audit trail
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	ledgerService.SetEventPublisher(eventBus)
	purchaseOrderService.SetEventPublisher(eventBus)
	goodsReceiptService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding rules (dec2 money precision)
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. Metrics - Record request counts and latencies (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSFromHTTPConfig(cfg.HTTP)))
	if httpMetrics != nil {
		engine.Use(httpMetrics.Middleware())
	}

	// Readiness check, verifies the database connection
	engine.GET("/readyz", readinessHandler(db))

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewStockHandler(ledgerService)).
		Register(handler.NewPurchaseOrderHandler(purchaseOrderService, goodsReceiptService)).
		Register(handler.NewGoodsReceiptHandler(goodsReceiptService)).
		Register(handler.NewInvoiceHandler(invoiceService, paymentService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewPriceHandler(priceService)).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// readinessHandler reports whether the server can reach its database
func readinessHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unready",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
