package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ItemHandler maneja el catálogo de ítems (protegido).
type ItemHandler struct {
	uc            *usecase.ItemUseCase
	ledger        *inventory.Ledger
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, ledger *inventory.Ledger, replenishment *inventory.ReplenishmentUseCase, log *logger.Logger) *ItemHandler {
	return &ItemHandler{uc: uc, ledger: ledger, replenishment: replenishment, log: log}
}

// Create godoc
// @Summary      Crear ítem
// @Description  Los precios pueden omitirse (borrador); el libro los exige al registrar movimientos.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ítems con total y bandera de stock bajo
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        branch_id        query  string  false  "Filial"
// @Param        location_id      query  string  false  "Ítems con saldo en la locación"
// @Param        status           query  string  false  "ACTIVE, DISCONTINUED, INACTIVE"
// @Param        search           query  string  false  "SKU, nombre o marca"
// @Param        low_stock        query  bool    false  "Solo bajo el mínimo"
// @Param        include_deleted  query  bool    false  "Solo admin"
// @Success      200  {object}  dto.ListResponse[dto.ItemResponse]
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var in dto.ItemListRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// FilterOptions godoc
// @Summary      Opciones de filtro del listado de ítems
// @Description  Categorías, proveedores y estados presentes en los ítems visibles.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Filial"
// @Success      200  {object}  dto.FilterOptionsResponse
// @Router       /api/items/filter-options [get]
func (h *ItemHandler) FilterOptions(c *fiber.Ctx) error {
	var in dto.ItemListRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.FilterOptions(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar ítem (baja lógica)
// @Description  Rechazado con 409 si el ítem tiene stock positivo.
// @Tags         items
// @Security     Bearer
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ItemHandler) Restore(c *fiber.Ctx) error {
	out, err := h.uc.Restore(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Distribución del stock de un ítem por locación
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.StockDistributionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/stock [get]
func (h *ItemHandler) Stock(c *fiber.Ctx) error {
	itemID := c.Params("id")
	rows, err := h.ledger.ListBalances(c.UserContext(), GetPrincipal(c), itemID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.StockDistributionResponse{ItemID: itemID, Locations: make([]dto.LocationBalanceResponse, 0, len(rows))}
	for _, row := range rows {
		out.TotalQuantity += row.Quantity
		out.Locations = append(out.Locations, dto.FromLocationBalance(row))
	}
	return c.JSON(out)
}

// MovementTypeOptions godoc
// @Summary      Tipos de movimiento aplicables al ítem
// @Description  Sin stock solo se ofrecen entradas.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {array}  dto.MovementTypeResponse
// @Router       /api/items/{id}/movement-types [get]
func (h *ItemHandler) MovementTypeOptions(c *fiber.Ctx) error {
	types, err := h.ledger.MovementTypeOptions(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.MovementTypeResponse, 0, len(types))
	for _, mt := range types {
		out = append(out, dto.FromMovementType(mt))
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Ítems bajo su stock mínimo con la cantidad sugerida de pedido, más urgentes primero.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Filial"
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/items/replenishment [get]
func (h *ItemHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), GetPrincipal(c), c.Query("branch_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
