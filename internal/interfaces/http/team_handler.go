package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/application/team"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// TeamHandler panel de empresa e invitaciones.
type TeamHandler struct {
	team    *team.Service
	invites *invitation.Service
}

func NewTeamHandler(t *team.Service, inv *invitation.Service) *TeamHandler {
	return &TeamHandler{team: t, invites: inv}
}

// Overview godoc
// @Summary      Panel de la empresa
// @Description  Miembros, cupo, documentos activos e invitaciones pendientes (solo para quien gestiona el equipo).
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TeamOverviewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/team [get]
func (h *TeamHandler) Overview(c *fiber.Ctx) error {
	ov, err := h.team.Overview(c.UserContext(), GetCaps(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TeamOverviewResponse{
		Members:     dto.ProfilesFromEntities(ov.Members),
		Invitations: make([]dto.InvitationResponse, 0, len(ov.Invitations)),
		Usage:       usageResponse(ov.Usage),
		Documents:   ov.Documents,
	}
	if org := dto.OrganizationFromEntity(ov.Organization); org != nil {
		out.Organization = *org
	}
	for _, inv := range ov.Invitations {
		out.Invitations = append(out.Invitations, dto.InvitationFromEntity(inv))
	}
	return c.JSON(out)
}

// CreateCode godoc
// @Summary      Generar código de invitación
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  dto.InvitationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "cupo completo"
// @Router       /api/team/codes [post]
func (h *TeamHandler) CreateCode(c *fiber.Ctx) error {
	inv, err := h.invites.CreateCode(c.UserContext(), GetCaps(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InvitationFromEntity(inv))
}

// SendEmailInvite godoc
// @Summary      Invitar por email a un usuario registrado
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.EmailInviteRequest  true  "Email"
// @Success      201  {object}  dto.InvitationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/team/invites [post]
func (h *TeamHandler) SendEmailInvite(c *fiber.Ctx) error {
	var in dto.EmailInviteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	inv, err := h.invites.SendEmailInvite(c.UserContext(), GetCaps(c), in.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InvitationFromEntity(inv))
}

// CancelInvitation godoc
// @Summary      Cancelar invitación pendiente
// @Tags         team
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la invitación"
// @Success      204
// @Router       /api/team/invitations/{id} [delete]
func (h *TeamHandler) CancelInvitation(c *fiber.Ctx) error {
	if err := h.invites.CancelInvitation(c.UserContext(), GetCaps(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequestJoin godoc
// @Summary      Solicitar unión con un código
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.JoinRequest  true  "Código"
// @Success      202  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse  "código inválido"
// @Router       /api/team/join [post]
func (h *TeamHandler) RequestJoin(c *fiber.Ctx) error {
	var in dto.JoinRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if _, err := h.invites.RequestJoin(c.UserContext(), GetCaps(c), in.Code); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: "solicitud enviada"})
}

// ToggleRole godoc
// @Summary      Alternar personal / jefe
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del miembro"
// @Success      200  {object}  dto.RoleResponse
// @Router       /api/team/members/{id}/role [post]
func (h *TeamHandler) ToggleRole(c *fiber.Ctx) error {
	role, err := h.team.ToggleRole(c.UserContext(), GetCaps(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RoleResponse{Role: string(role)})
}

// SetPermission godoc
// @Summary      Cambiar un permiso de jefe
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del miembro"
// @Param        body  body  dto.SetPermissionRequest  true  "Permiso"
// @Success      200  {object}  dto.PermissionsResponse
// @Router       /api/team/members/{id}/permissions [put]
func (h *TeamHandler) SetPermission(c *fiber.Ctx) error {
	var in dto.SetPermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	perms, err := h.team.SetPermission(c.UserContext(), GetCaps(c), c.Params("id"), entity.Permission(in.Permission), in.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PermissionsResponse{
		CanInvite:         perms.CanInvite,
		CanViewTeamDocs:   perms.CanViewTeamDocs,
		CanEditTeamDocs:   perms.CanEditTeamDocs,
		CanDeleteTeamDocs: perms.CanDeleteTeamDocs,
	})
}

// Kick godoc
// @Summary      Expulsar miembro
// @Tags         team
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del miembro"
// @Success      204
// @Router       /api/team/members/{id} [delete]
func (h *TeamHandler) Kick(c *fiber.Ctx) error {
	if err := h.team.Kick(c.UserContext(), GetCaps(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Leave godoc
// @Summary      Abandonar la empresa
// @Tags         team
// @Security     BearerAuth
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "el dueño no puede salir"
// @Router       /api/team/leave [post]
func (h *TeamHandler) Leave(c *fiber.Ctx) error {
	if err := h.team.Leave(c.UserContext(), GetCaps(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func usageResponse(u invitation.Usage) dto.UsageResponse {
	return dto.UsageResponse{Members: u.Members, UnusedInvitations: u.UnusedInvitations, Used: u.Used(), Limit: u.Limit}
}
