package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReferenceHandler categorías, grupos de categorías y proveedores (protegido).
type ReferenceHandler struct {
	categories *usecase.CategoryUseCase
	suppliers  *usecase.SupplierUseCase
	log        *logger.Logger
}

func NewReferenceHandler(categories *usecase.CategoryUseCase, suppliers *usecase.SupplierUseCase, log *logger.Logger) *ReferenceHandler {
	return &ReferenceHandler{categories: categories, suppliers: suppliers, log: log}
}

// ─── Grupos de categorías ────────────────────────────────────────────────────

// CreateCategoryGroup godoc
// @Summary      Crear grupo de categorías (admin)
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryGroupRequest  true  "Grupo"
// @Success      201   {object}  dto.CategoryGroupResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/category-groups [post]
func (h *ReferenceHandler) CreateCategoryGroup(c *fiber.Ctx) error {
	var in dto.CreateCategoryGroupRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.categories.CreateGroup(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ReferenceHandler) ListCategoryGroups(c *fiber.Ctx) error {
	out, err := h.categories.ListGroups(c.UserContext(), GetPrincipal(c), c.QueryBool("include_inactive"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) GetCategoryGroup(c *fiber.Ctx) error {
	out, err := h.categories.GetGroup(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) UpdateCategoryGroup(c *fiber.Ctx) error {
	var in dto.UpdateCategoryGroupRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.categories.UpdateGroup(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) DeactivateCategoryGroup(c *fiber.Ctx) error {
	if err := h.categories.DeactivateGroup(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── Categorías ──────────────────────────────────────────────────────────────

// CreateCategory godoc
// @Summary      Crear categoría (admin)
// @Description  group_id opcional; el grupo debe estar activo.
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "Categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *ReferenceHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.categories.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        group_id          query  string  false  "Grupo"
// @Param        include_inactive  query  bool    false  "Solo admin"
// @Success      200  {array}  dto.CategoryResponse
// @Router       /api/categories [get]
func (h *ReferenceHandler) ListCategories(c *fiber.Ctx) error {
	var in dto.CategoryListRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.categories.List(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) GetCategory(c *fiber.Ctx) error {
	out, err := h.categories.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) UpdateCategory(c *fiber.Ctx) error {
	var in dto.UpdateCategoryRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.categories.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) DeactivateCategory(c *fiber.Ctx) error {
	if err := h.categories.Deactivate(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── Proveedores ─────────────────────────────────────────────────────────────

// CreateSupplier godoc
// @Summary      Registrar proveedor (admin)
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierRequest  true  "Proveedor"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *ReferenceHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.suppliers.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSuppliers godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        search            query  string  false  "Nombre o identificación fiscal"
// @Param        include_inactive  query  bool    false  "Solo admin"
// @Success      200  {object}  dto.ListResponse[dto.SupplierResponse]
// @Router       /api/suppliers [get]
func (h *ReferenceHandler) ListSuppliers(c *fiber.Ctx) error {
	var in dto.SupplierListRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.suppliers.List(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) GetSupplier(c *fiber.Ctx) error {
	out, err := h.suppliers.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.UpdateSupplierRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.suppliers.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func (h *ReferenceHandler) DeactivateSupplier(c *fiber.Ctx) error {
	if err := h.suppliers.Deactivate(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
