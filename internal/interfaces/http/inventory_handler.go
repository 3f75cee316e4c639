package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// InventoryHandler maneja el libro: movimientos, traslados y saldos (protegido).
type InventoryHandler struct {
	ledger *inventory.Ledger
	log    *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, log: log}
}

// CreateMovement godoc
// @Summary      Registrar movimiento
// @Description  Aplica el movimiento al saldo del par ítem/locación y lo anexa al libro en una transacción.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave para no repetir el envío"
// @Param        body             body    dto.CreateMovementRequest  true   "item_id, location_id, movement_type, quantity"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	mov, err := h.ledger.CreateMovement(c.UserContext(), GetPrincipal(c), inventory.CreateMovementInput{
		ItemID:           in.ItemID,
		LocationID:       in.LocationID,
		MovementTypeCode: in.MovementTypeCode,
		Quantity:         in.Quantity,
		Notes:            in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// Transfer godoc
// @Summary      Trasladar stock entre locaciones de la misma filial
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave para no repetir el envío"
// @Param        body             body    dto.TransferRequest  true   "Origen, destino y cantidad"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/movements/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	legs, err := h.ledger.Transfer(c.UserContext(), GetPrincipal(c), inventory.TransferInput{
		ItemID:         in.ItemID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		Notes:          in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.TransferResponse{Out: dto.FromMovement(legs[0]), In: dto.FromMovement(legs[1])}
	if legs[0].TransferID != nil {
		out.TransferID = *legs[0].TransferID
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id        query  string  false  "Ítem"
// @Param        location_id    query  string  false  "Locación"
// @Param        movement_type  query  string  false  "Código de tipo"
// @Param        from           query  string  false  "Desde (RFC 3339)"
// @Param        to             query  string  false  "Hasta, exclusivo (RFC 3339)"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	in.DefaultPage()
	q := inventory.MovementQuery{
		BranchID:         in.BranchID,
		ItemID:           in.ItemID,
		LocationID:       in.LocationID,
		MovementTypeCode: in.MovementType,
		UserID:           in.UserID,
		Limit:            in.Limit,
		Offset:           in.Offset,
	}
	q.From = parseTime(in.From)
	q.To = parseTime(in.To)

	movs, err := h.ledger.ListMovements(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, dto.FromMovement(m))
	}
	return c.JSON(dto.ListResponse[dto.MovementResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	})
}

func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.ledger.GetMovement(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromMovement(mov))
}

// GetBalance godoc
// @Summary      Saldo de un ítem en una locación
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true  "Ítem"
// @Param        location_id  query  string  true  "Locación"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/balances [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	itemID, locationID, err := balanceKey(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	b, err := h.ledger.GetBalance(c.UserContext(), GetPrincipal(c), itemID, locationID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BalanceResponse{ItemID: b.ItemID, LocationID: b.LocationID, Quantity: b.Quantity, UpdatedAt: b.UpdatedAt})
}

// VerifyBalance godoc
// @Summary      Comparar saldo guardado con el reconstruido desde el libro (admin)
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true  "Ítem"
// @Param        location_id  query  string  true  "Locación"
// @Success      200  {object}  dto.BalanceCheckResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/balances/verify [get]
func (h *InventoryHandler) VerifyBalance(c *fiber.Ctx) error {
	itemID, locationID, err := balanceKey(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	check, err := h.ledger.VerifyBalance(c.UserContext(), itemID, locationID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BalanceCheckResponse{
		ItemID:     check.ItemID,
		LocationID: check.LocationID,
		Stored:     check.Stored,
		Replayed:   check.Replayed,
		Consistent: check.Consistent(),
	})
}

func balanceKey(c *fiber.Ctx) (string, string, error) {
	itemID, locationID := c.Query("item_id"), c.Query("location_id")
	if itemID == "" || locationID == "" {
		return "", "", &requestError{code: "VALIDATION", message: "item_id y location_id son requeridos"}
	}
	return itemID, locationID, nil
}

// parseTime convierte un valor ya validado como RFC 3339; vacío = sin límite.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
