package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// CatalogHandler maneja filiales, sectores, locaciones y tipos de movimiento (protegido).
type CatalogHandler struct {
	branches  *usecase.BranchUseCase
	locations *usecase.LocationUseCase
	types     *usecase.MovementTypeUseCase
	log       *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(branches *usecase.BranchUseCase, locations *usecase.LocationUseCase, types *usecase.MovementTypeUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{branches: branches, locations: locations, types: types, log: log}
}

// ─── Filiales ────────────────────────────────────────────────────────────────

// CreateBranch godoc
// @Summary      Crear filial (admin)
// @Tags         branches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBranchRequest  true  "Nombre"
// @Success      201   {object}  dto.BranchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/branches [post]
func (h *CatalogHandler) CreateBranch(c *fiber.Ctx) error {
	var in dto.CreateBranchRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.branches.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBranches godoc
// @Summary      Listar filiales visibles
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Param        include_inactive  query  bool  false  "Solo admin"
// @Success      200  {object}  dto.ListResponse[dto.BranchResponse]
// @Router       /api/branches [get]
func (h *CatalogHandler) ListBranches(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.branches.List(c.UserContext(), GetPrincipal(c), c.QueryBool("include_inactive"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetBranch(c *fiber.Ctx) error {
	out, err := h.branches.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateBranch(c *fiber.Ctx) error {
	var in dto.UpdateBranchRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.branches.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreateSector(c *fiber.Ctx) error {
	var in dto.CreateSectorRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.branches.CreateSector(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListSectors(c *fiber.Ctx) error {
	out, err := h.branches.ListSectors(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ─── Locaciones ──────────────────────────────────────────────────────────────

// CreateLocation godoc
// @Summary      Crear locación
// @Description  branch_id vacío usa la filial por defecto del usuario.
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "Datos de la locación"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.locations.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListLocations godoc
// @Summary      Listar locaciones visibles
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        branch_id         query  string  false  "Filial"
// @Param        type              query  string  false  "RECEIVING, STORAGE, PICKING, DISPATCH, STOREFRONT"
// @Param        include_inactive  query  bool    false  "Incluir inactivas"
// @Success      200  {object}  dto.ListResponse[dto.LocationResponse]
// @Router       /api/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.locations.List(c.UserContext(), GetPrincipal(c),
		c.Query("branch_id"), c.Query("type"), c.QueryBool("include_inactive"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	out, err := h.locations.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateLocation(c *fiber.Ctx) error {
	var in dto.UpdateLocationRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.locations.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ─── Tipos de movimiento ─────────────────────────────────────────────────────

// CreateMovementType godoc
// @Summary      Registrar tipo de movimiento (admin)
// @Tags         movement-types
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementTypeRequest  true  "Definición"
// @Success      201   {object}  dto.MovementTypeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-types [post]
func (h *CatalogHandler) CreateMovementType(c *fiber.Ctx) error {
	var in dto.CreateMovementTypeRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.types.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovementTypes godoc
// @Summary      Listar tipos de movimiento
// @Tags         movement-types
// @Security     Bearer
// @Produce      json
// @Param        active    query  bool    false  "Solo activos"
// @Param        category  query  string  false  "Categoría"
// @Success      200  {array}  dto.MovementTypeResponse
// @Router       /api/movement-types [get]
func (h *CatalogHandler) ListMovementTypes(c *fiber.Ctx) error {
	out, err := h.types.List(c.UserContext(), c.QueryBool("active"), c.Query("category"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetMovementType(c *fiber.Ctx) error {
	out, err := h.types.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateMovementType(c *fiber.Ctx) error {
	var in dto.UpdateMovementTypeRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.types.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) DeactivateMovementType(c *fiber.Ctx) error {
	if err := h.types.Deactivate(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
