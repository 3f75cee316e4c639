package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/onboarding"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	tenancy := access.TenancyDefaults{
		DefaultBranchID: cfg.Tenancy.DefaultBranchID,
		DefaultSectorID: cfg.Tenancy.DefaultSectorID,
	}
	filter := access.NewFilter(tenancy)

	branchUC := usecase.NewBranchUseCase(store.branches, filter)
	locationUC := usecase.NewLocationUseCase(store.locations, store.branches, filter)
	refs := usecase.ItemReferences{Categories: store.categories, Suppliers: store.suppliers}
	itemUC := usecase.NewItemUseCase(store.items, store.branches, refs, store.balances, store.txRunner, filter)
	categoryUC := usecase.NewCategoryUseCase(store.categories)
	supplierUC := usecase.NewSupplierUseCase(store.suppliers)
	movementTypeUC := usecase.NewMovementTypeUseCase(store.movementTypes)
	onboardingUC := onboarding.NewUseCase(store.users, store.branches, tenancy, onboarding.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if store.ephemeral {
		// El almacén en memoria arranca vacío: catálogo base y administrador inicial.
		if err := bootstrapMemory(ctx, cfg, movementTypeUC, onboardingUC); err != nil {
			log.Fatal().Err(err).Msg("preparar almacén en memoria")
		}
	}

	ledger := inventory.NewLedger(
		store.txRunner, store.items, store.locations, store.movementTypes,
		store.balances, store.movements, filter, log.Named("ledger"),
	)
	var ledgerMetrics *metrics.LedgerMetrics
	if cfg.Metrics.Enabled {
		ledgerMetrics = metrics.NewLedgerMetrics()
		ledger = ledger.WithObserver(ledgerMetrics)
	}
	replenishmentUC := inventory.NewReplenishmentUseCase(store.items, filter)

	idem, err := openIdempotencyStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer idem.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Swagger.File); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Swagger.File,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", cfg.Swagger.File).Msg("documento OpenAPI no encontrado, /docs deshabilitado")
	}

	deps := httpRouter.RouterDeps{
		Branches:       branchUC,
		Locations:      locationUC,
		Items:          itemUC,
		Categories:     categoryUC,
		Suppliers:      supplierUC,
		MovementTypes:  movementTypeUC,
		Ledger:         ledger,
		Replenishment:  replenishmentUC,
		Onboarding:     onboardingUC,
		Idempotency:    idem,
		IdempotencyTTL: cfg.Idempotency.TTL,
		MetricsPath:    cfg.Metrics.Path,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Named("http"),
	}
	if ledgerMetrics != nil {
		deps.Metrics = ledgerMetrics.Handler()
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openIdempotencyStore Redis si está configurado; si no, claves en memoria del proceso.
func openIdempotencyStore(ctx context.Context, cfg *config.Config) (ports.IdempotencyStore, error) {
	if !cfg.Redis.Enabled() {
		return cache.NewInMemoryIdempotencyStore(time.Minute), nil
	}
	return cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
