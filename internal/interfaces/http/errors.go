package http

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// retryAfterSeconds sugerido al cliente ante un conflicto de concurrencia.
const retryAfterSeconds = "1"

var validate = newValidator()

var phonePattern = regexp.MustCompile(`^\+?[\d\s-]{8,20}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// requestError error de forma en la petición (cuerpo o query inválidos).
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

// bindJSON parsea el cuerpo y aplica las reglas validate: del DTO.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	return validateStruct(out)
}

// bindQuery parsea la query string y aplica las reglas validate: del DTO.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return &requestError{code: "INVALID_QUERY", message: "parámetros inválidos"}
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		return &requestError{code: "VALIDATION", message: strings.Join(msgs, "; ")}
	}
	return &requestError{code: "VALIDATION", message: err.Error()}
}

// respondError traduce un error de aplicación a su respuesta HTTP.
// Solo los errores no clasificados (500) se registran.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: reqErr.code, Message: reqErr.message})
	}

	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   insufficient.Error(),
			Current:   insufficient.Current,
			Requested: insufficient.Requested,
		})
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintente"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrCyclicReference):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CYCLIC_REFERENCE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "USERNAME_TAKEN", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
