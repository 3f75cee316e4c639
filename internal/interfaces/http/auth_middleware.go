package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// LocalPrincipal clave de c.Locals con la identidad del llamador.
const LocalPrincipal = "principal"

// AuthMiddleware valida el Bearer Token JWT y deja el Principal en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil || id.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalPrincipal, entity.Principal{
			UserID:    id.UserID,
			IsAdmin:   id.IsAdmin,
			BranchIDs: id.BranchIDs,
			SectorIDs: id.SectorIDs,
		})
		return c.Next()
	}
}

// GetPrincipal devuelve la identidad cargada por AuthMiddleware (vacía si no pasó por él).
func GetPrincipal(c *fiber.Ctx) entity.Principal {
	p, _ := c.Locals(LocalPrincipal).(entity.Principal)
	return p
}

// RequireAdmin corta con 403 si el llamador no es administrador.
// Debe usarse después de AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetPrincipal(c).IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "se requiere administrador"})
		}
		return c.Next()
	}
}
