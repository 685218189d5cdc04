package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/domain"
)

// errorMapping status y código estable por error de dominio. El orden importa: el primero que coincide gana.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUnavailable, fiber.StatusServiceUnavailable, "UNAVAILABLE"},
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrQuotaExceeded, fiber.StatusConflict, "QUOTA_EXCEEDED"},
	{domain.ErrInvalidCode, fiber.StatusNotFound, "INVALID_CODE"},
	{domain.ErrAlreadyConsumed, fiber.StatusConflict, "ALREADY_CONSUMED"},
	{domain.ErrDuplicateInvite, fiber.StatusConflict, "DUPLICATE_INVITE"},
	{domain.ErrOwnerNotFound, fiber.StatusNotFound, "OWNER_NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce un error de caso de uso a respuesta HTTP. Lo no mapeado es 500 sin detalles internos.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			body := dto.ErrorResponse{Code: m.code, Message: err.Error(), Retryable: m.err == domain.ErrUnavailable}
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				body.Field = verr.Field
				body.Message = verr.Reason
			}
			if body.Retryable {
				body.Message = domain.ErrUnavailable.Error()
			}
			return c.Status(m.status).JSON(body)
		}
	}
	logFor(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido")
}
