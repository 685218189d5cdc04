package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/auth"
	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/domain"
)

// AuthHandler maneja registro, login y la sesión actual.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, full_name"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return badRequest(c, "VALIDATION", "email y password son requeridos")
	}
	s, err := h.uc.Register(c.UserContext(), in.Email, in.Password, in.FullName)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LoginResponse{Token: s.Token, Profile: dto.ProfileFromEntity(s.Profile)})
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return badRequest(c, "VALIDATION", "email y password son requeridos")
	}
	s, err := h.uc.Login(c.UserContext(), in.Email, in.Password)
	if errors.Is(err, domain.ErrUnauthorized) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "credenciales inválidas"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LoginResponse{Token: s.Token, Profile: dto.ProfileFromEntity(s.Profile)})
}

// Me godoc
// @Summary      Perfil y capacidades de la sesión
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MeResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caps := GetCaps(c)
	p := caps.Profile()
	return c.JSON(dto.MeResponse{
		Profile:       dto.ProfileFromEntity(&p),
		IsPremium:     caps.IsPremium(),
		CanManageTeam: caps.CanManageTeam(),
		IsOwner:       caps.IsOwner(),
		CanUploadCorp: caps.CanUploadCorporate(),
	})
}
