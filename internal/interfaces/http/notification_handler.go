package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/application/usecase"
)

// NotificationHandler bandeja de notificaciones y respuestas a solicitudes e invitaciones.
type NotificationHandler struct {
	uc      *usecase.NotificationUseCase
	invites *invitation.Service
}

func NewNotificationHandler(uc *usecase.NotificationUseCase, inv *invitation.Service) *NotificationHandler {
	return &NotificationHandler{uc: uc, invites: inv}
}

// List godoc
// @Summary      Notificaciones del usuario
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.NotificationListResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	list, unread, err := h.uc.List(c.UserContext(), GetCaps(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.NotificationListResponse{Items: make([]dto.NotificationResponse, 0, len(list)), Unread: unread}
	for _, n := range list {
		out.Items = append(out.Items, dto.NotificationFromEntity(n))
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar como leída
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "ID"
// @Success      204
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	return h.noContent(c, h.uc.MarkRead(c.UserContext(), GetCaps(c), c.Params("id")))
}

// MarkAllRead godoc
// @Summary      Marcar todas como leídas
// @Tags         notifications
// @Security     BearerAuth
// @Success      204
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	return h.noContent(c, h.uc.MarkAllRead(c.UserContext(), GetCaps(c)))
}

// Delete godoc
// @Summary      Borrar notificación
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "ID"
// @Success      204
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	return h.noContent(c, h.uc.Delete(c.UserContext(), GetCaps(c), c.Params("id")))
}

// Approve godoc
// @Summary      Aprobar solicitud de unión
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la notificación join_request"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "ya resuelta o cupo completo"
// @Router       /api/notifications/{id}/approve [post]
func (h *NotificationHandler) Approve(c *fiber.Ctx) error {
	return h.noContent(c, h.invites.ApproveJoin(c.UserContext(), GetCaps(c), c.Params("id")))
}

// Reject godoc
// @Summary      Rechazar solicitud de unión
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la notificación join_request"
// @Success      204
// @Router       /api/notifications/{id}/reject [post]
func (h *NotificationHandler) Reject(c *fiber.Ctx) error {
	return h.noContent(c, h.invites.RejectJoin(c.UserContext(), GetCaps(c), c.Params("id")))
}

// Accept godoc
// @Summary      Aceptar invitación por email
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la notificación invite"
// @Success      204
// @Router       /api/notifications/{id}/accept [post]
func (h *NotificationHandler) Accept(c *fiber.Ctx) error {
	return h.noContent(c, h.invites.AcceptEmailInvite(c.UserContext(), GetCaps(c), c.Params("id")))
}

// Decline godoc
// @Summary      Rechazar invitación por email
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la notificación invite"
// @Success      204
// @Router       /api/notifications/{id}/decline [post]
func (h *NotificationHandler) Decline(c *fiber.Ctx) error {
	return h.noContent(c, h.invites.DeclineEmailInvite(c.UserContext(), GetCaps(c), c.Params("id")))
}

func (h *NotificationHandler) noContent(c *fiber.Ctx, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
