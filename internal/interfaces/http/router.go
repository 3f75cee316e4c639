package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/onboarding"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Branches      *usecase.BranchUseCase
	Locations     *usecase.LocationUseCase
	Items         *usecase.ItemUseCase
	Categories    *usecase.CategoryUseCase
	Suppliers     *usecase.SupplierUseCase
	MovementTypes *usecase.MovementTypeUseCase
	Ledger        *inventory.Ledger
	Replenishment *inventory.ReplenishmentUseCase
	Onboarding    *onboarding.UseCase

	Idempotency    ports.IdempotencyStore // nil = sin control de reenvíos
	IdempotencyTTL time.Duration

	Metrics     nethttp.Handler // nil = sin /metrics
	MetricsPath string

	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.Onboarding, log.Named("auth"))
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, log.Named("idempotency"))

	protected.Put("/users/:id/grants", RequireAdmin(), authHandler.Grant)

	catalog := NewCatalogHandler(deps.Branches, deps.Locations, deps.MovementTypes, log.Named("catalog"))

	branches := protected.Group("/branches")
	branches.Post("/", catalog.CreateBranch)
	branches.Get("/", catalog.ListBranches)
	branches.Get("/:id", catalog.GetBranch)
	branches.Put("/:id", catalog.UpdateBranch)
	branches.Post("/:id/sectors", catalog.CreateSector)
	branches.Get("/:id/sectors", catalog.ListSectors)

	locations := protected.Group("/locations")
	locations.Post("/", catalog.CreateLocation)
	locations.Get("/", catalog.ListLocations)
	locations.Get("/:id", catalog.GetLocation)
	locations.Put("/:id", catalog.UpdateLocation)

	types := protected.Group("/movement-types")
	types.Post("/", catalog.CreateMovementType)
	types.Get("/", catalog.ListMovementTypes)
	types.Get("/:id", catalog.GetMovementType)
	types.Put("/:id", catalog.UpdateMovementType)
	types.Delete("/:id", RequireAdmin(), catalog.DeactivateMovementType)

	// Datos de referencia sin filial; escrituras solo admin (lo verifica el caso de uso)
	refs := NewReferenceHandler(deps.Categories, deps.Suppliers, log.Named("reference"))

	groups := protected.Group("/category-groups")
	groups.Post("/", refs.CreateCategoryGroup)
	groups.Get("/", refs.ListCategoryGroups)
	groups.Get("/:id", refs.GetCategoryGroup)
	groups.Put("/:id", refs.UpdateCategoryGroup)
	groups.Delete("/:id", refs.DeactivateCategoryGroup)

	categories := protected.Group("/categories")
	categories.Post("/", refs.CreateCategory)
	categories.Get("/", refs.ListCategories)
	categories.Get("/:id", refs.GetCategory)
	categories.Put("/:id", refs.UpdateCategory)
	categories.Delete("/:id", refs.DeactivateCategory)

	suppliers := protected.Group("/suppliers")
	suppliers.Post("/", refs.CreateSupplier)
	suppliers.Get("/", refs.ListSuppliers)
	suppliers.Get("/:id", refs.GetSupplier)
	suppliers.Put("/:id", refs.UpdateSupplier)
	suppliers.Delete("/:id", refs.DeactivateSupplier)

	// Ítems; /replenishment y /filter-options antes de /:id
	itemHandler := NewItemHandler(deps.Items, deps.Ledger, deps.Replenishment, log.Named("items"))
	items := protected.Group("/items")
	items.Get("/replenishment", itemHandler.Replenishment)
	items.Get("/filter-options", itemHandler.FilterOptions)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Deactivate)
	items.Post("/:id/restore", RequireAdmin(), itemHandler.Restore)
	items.Get("/:id/stock", itemHandler.Stock)
	items.Get("/:id/movement-types", itemHandler.MovementTypeOptions)

	// Libro de movimientos
	inv := NewInventoryHandler(deps.Ledger, log.Named("ledger"))
	movements := protected.Group("/movements")
	movements.Post("/", idem, inv.CreateMovement)
	movements.Post("/transfer", idem, inv.Transfer)
	movements.Get("/", inv.ListMovements)
	movements.Get("/:id", inv.GetMovement)

	balances := protected.Group("/balances")
	balances.Get("/", inv.GetBalance)
	balances.Get("/verify", RequireAdmin(), inv.VerifyBalance)
}
