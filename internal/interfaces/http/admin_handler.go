package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/application/usecase"
	"github.com/jhoicas/evraklab-api/internal/domain"
)

// AdminHandler operaciones del administrador del sistema. Todas las rutas van detrás de RequireRole(admin).
type AdminHandler struct {
	uc *usecase.AdminUseCase
}

func NewAdminHandler(uc *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// ProvisionCorporatePlan godoc
// @Summary      Alta de plan corporativo
// @Description  Crea la empresa y convierte al usuario indicado en su dueño.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ProvisionCorporatePlanRequest  true  "Empresa"
// @Success      201  {object}  dto.OrganizationResponse
// @Failure      409  {object}  dto.ErrorResponse  "el usuario ya pertenece a una empresa"
// @Router       /api/admin/corporate-plans [post]
func (h *AdminHandler) ProvisionCorporatePlan(c *fiber.Ctx) error {
	var in dto.ProvisionCorporatePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	credits := decimal.Zero
	if strings.TrimSpace(in.Credits) != "" {
		d, err := parseCredits(in.Credits)
		if err != nil {
			return writeError(c, err)
		}
		credits = d
	}
	org, err := h.uc.ProvisionCorporatePlan(c.UserContext(), GetCaps(c), usecase.CorporatePlanInput{
		OwnerID:             in.OwnerID,
		Name:                in.Name,
		MemberLimit:         in.MemberLimit,
		SubscriptionEndDate: in.SubscriptionEndDate,
		Credits:             credits,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OrganizationFromEntity(org))
}

// UpdateOrganization godoc
// @Summary      Modificar empresa
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                         true  "ID de la empresa"
// @Param        body  body  dto.UpdateOrganizationRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.OrganizationResponse
// @Router       /api/admin/organizations/{id} [put]
func (h *AdminHandler) UpdateOrganization(c *fiber.Ctx) error {
	var in dto.UpdateOrganizationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	patch := usecase.OrganizationPatch{
		Name:                in.Name,
		MemberLimit:         in.MemberLimit,
		SubscriptionEndDate: in.SubscriptionEndDate,
	}
	if in.Credits != nil {
		d, err := parseCredits(*in.Credits)
		if err != nil {
			return writeError(c, err)
		}
		patch.Credits = &d
	}
	org, err := h.uc.UpdateOrganization(c.UserContext(), GetCaps(c), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OrganizationFromEntity(org))
}

// DeleteOrganization godoc
// @Summary      Eliminar empresa
// @Description  Los miembros quedan como usuarios normales y sus documentos pasan a personales.
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la empresa"
// @Success      204
// @Router       /api/admin/organizations/{id} [delete]
func (h *AdminHandler) DeleteOrganization(c *fiber.Ctx) error {
	if err := h.uc.DeleteOrganization(c.UserContext(), GetCaps(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Organizations godoc
// @Summary      Listar empresas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.OrganizationListResponse
// @Router       /api/admin/organizations [get]
func (h *AdminHandler) Organizations(c *fiber.Ctx) error {
	list, err := h.uc.Organizations(c.UserContext(), GetCaps(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.OrganizationListResponse{Items: make([]dto.OrganizationResponse, 0, len(list))}
	for _, o := range list {
		out.Items = append(out.Items, *dto.OrganizationFromEntity(o))
	}
	return c.JSON(out)
}

// Profiles godoc
// @Summary      Listar usuarios
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ProfileListResponse
// @Router       /api/admin/profiles [get]
func (h *AdminHandler) Profiles(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	list, err := h.uc.Profiles(c.UserContext(), GetCaps(c), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProfileListResponse{
		Items: dto.ProfilesFromEntities(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Announce godoc
// @Summary      Aviso del administrador
// @Description  Sin user_id se envía a todos los usuarios.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AnnouncementRequest  true  "Aviso"
// @Success      201  {object}  dto.AnnouncementResponse
// @Router       /api/admin/announcements [post]
func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	var in dto.AnnouncementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	sent, err := h.uc.Announce(c.UserContext(), GetCaps(c), usecase.AnnouncementInput{
		UserID:  in.UserID,
		Title:   in.Title,
		Message: in.Message,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AnnouncementResponse{Sent: sent})
}

func parseCredits(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, domain.Invalid("credits", "importe inválido")
	}
	return d, nil
}
