package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/dto"
)

// RequireOrganization corta la petición si el usuario no pertenece a ninguna empresa.
// Debe usarse DESPUÉS de AuthMiddleware (necesita la sesión en locals).
//
// Comportamiento:
//   - 401 → no hay sesión en el contexto.
//   - 403 NO_ORGANIZATION → perfil sin empresa (p. ej. tras ser expulsado).
func RequireOrganization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caps := GetCaps(c)
		if caps == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SESSION", Message: "sesión requerida"})
		}
		if caps.OrgID() == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "NO_ORGANIZATION",
				Message: "el usuario no pertenece a una empresa",
			})
		}
		return c.Next()
	}
}
