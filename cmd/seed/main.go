// seed prepara una base PostgreSQL: aplica las migraciones, carga el catálogo base de tipos
// de movimiento y, opcionalmente, tipos adicionales desde un CSV y el administrador inicial.
//
// Uso: go run ./cmd/seed [-types tipos.csv] [-latin1]
//
// El CSV usa ';' como separador y cabecera:
//
//	code;name;factor;category;units_per_package;description
//
// Los catálogos exportados de planillas suelen venir en ISO-8859-1; -latin1 fuerza esa
// decodificación y, sin la bandera, se usa cuando el archivo no es UTF-8 válido.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/application/onboarding"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	typesPath := flag.String("types", "", "CSV con tipos de movimiento adicionales")
	latin1 := flag.Bool("latin1", false, "decodificar el CSV como ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("seed")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	system := entity.Principal{UserID: "seed", IsAdmin: true}
	types := usecase.NewMovementTypeUseCase(postgres.NewMovementTypeRepository(pool))

	defs := usecase.DefaultMovementTypes()
	if *typesPath != "" {
		extra, err := readTypesCSV(*typesPath, *latin1)
		if err != nil {
			log.Fatal().Err(err).Str("file", *typesPath).Msg("leer CSV de tipos")
		}
		defs = append(defs, extra...)
	}
	created, err := types.EnsureCatalog(ctx, system, defs)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar tipos de movimiento")
	}
	log.Info().Int("created", created).Int("total", len(defs)).Msg("catálogo de tipos de movimiento")

	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		log.Info().Msg("ADMIN_USERNAME/ADMIN_PASSWORD vacíos, sin administrador inicial")
		return
	}
	users := onboarding.NewUseCase(
		postgres.NewUserRepository(pool),
		postgres.NewBranchRepository(pool),
		access.TenancyDefaults{DefaultBranchID: cfg.Tenancy.DefaultBranchID, DefaultSectorID: cfg.Tenancy.DefaultSectorID},
		onboarding.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
	)
	admin, err := users.BootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}
	log.Info().Str("user_id", admin.ID).Str("username", admin.Username).Msg("administrador listo")
}
