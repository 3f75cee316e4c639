package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/onboarding"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// storage repositorios del adaptador elegido por STORAGE_DRIVER.
type storage struct {
	branches      repository.BranchRepository
	locations     repository.LocationRepository
	items         repository.ItemRepository
	categories    repository.CategoryRepository
	suppliers     repository.SupplierRepository
	movementTypes repository.MovementTypeRepository
	users         repository.UserRepository
	balances      repository.StockBalanceReader
	movements     repository.StockMovementReader
	txRunner      inventory.TxRunner

	ephemeral bool
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			branches:      s.Branches(),
			locations:     s.Locations(),
			items:         s.Items(),
			categories:    s.Categories(),
			suppliers:     s.Suppliers(),
			movementTypes: s.MovementTypes(),
			users:         s.Users(),
			balances:      s.Balances(),
			movements:     s.Movements(),
			txRunner:      memory.NewTxRunner(s),
			ephemeral:     true,
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		branches:      postgres.NewBranchRepository(pool),
		locations:     postgres.NewLocationRepository(pool),
		items:         postgres.NewItemRepository(pool),
		categories:    postgres.NewCategoryRepository(pool),
		suppliers:     postgres.NewSupplierRepository(pool),
		movementTypes: postgres.NewMovementTypeRepository(pool),
		users:         postgres.NewUserRepository(pool),
		balances:      postgres.NewStockBalanceRepository(pool),
		movements:     postgres.NewStockMovementRepository(pool),
		txRunner:      postgres.NewTxRunner(pool),
		close:         pool.Close,
	}, nil
}

// bootstrapMemory carga el catálogo base de tipos y, si hay credenciales, el administrador inicial.
func bootstrapMemory(ctx context.Context, cfg *config.Config, types *usecase.MovementTypeUseCase, users *onboarding.UseCase) error {
	system := entity.Principal{UserID: "system", IsAdmin: true}
	if _, err := types.EnsureCatalog(ctx, system, usecase.DefaultMovementTypes()); err != nil {
		return err
	}
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		return nil
	}
	_, err := users.BootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	return err
}
