package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional que identifica un envío único del cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// Idempotency rechaza con 409 una escritura cuya Idempotency-Key ya fue aceptada.
// La clave se libera si la petición falla, para que el cliente pueda reintentar.
// Debe usarse después de AuthMiddleware: la clave se acota al usuario.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderIdempotencyKey)
		if raw == "" || store == nil {
			return c.Next()
		}
		if len(raw) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		key := GetPrincipal(c).UserID + ":" + raw

		ctx := c.UserContext()
		first, err := store.MarkProcessed(ctx, key, ttl)
		if err != nil {
			log.Error().Err(err).Str("path", c.Path()).Msg("idempotency store no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo registrar la clave de idempotencia"})
		}
		if !first {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "la petición con esta Idempotency-Key ya fue procesada"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.Release(ctx, key); relErr != nil {
				log.Warn().Err(relErr).Str("key", raw).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
		return err
	}
}
