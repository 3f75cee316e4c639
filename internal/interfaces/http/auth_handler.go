package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/onboarding"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// AuthHandler maneja registro, login y permisos de usuario.
type AuthHandler struct {
	uc  *onboarding.UseCase
	log *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *onboarding.UseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Register godoc
// @Summary      Registrar usuario
// @Description  Crea el usuario con su perfil; recibe la filial y el sector por defecto si están configurados.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "username, password"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	user, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Grant godoc
// @Summary      Asignar filiales y sectores a un usuario (admin)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del usuario"
// @Param        body  body  dto.GrantRequest  true  "branch_ids, sector_ids"
// @Success      200   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/grants [put]
func (h *AuthHandler) Grant(c *fiber.Ctx) error {
	var in dto.GrantRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Grant(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
