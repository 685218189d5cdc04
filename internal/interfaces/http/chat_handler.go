package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/application/usecase"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

type ChatHandler struct {
	uc *usecase.ChatUseCase
}

func NewChatHandler(uc *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

// Messages godoc
// @Summary      Conversación del chat de empresa
// @Description  Sin peer devuelve el canal general; con peer, el chat directo con ese miembro.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        peer   query  string  false  "ID del otro miembro"
// @Param        limit  query  int     false  "Máximo de mensajes (50 por defecto)"
// @Success      200  {object}  dto.MessageListResponse
// @Router       /api/chat/messages [get]
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	list, err := h.uc.Messages(c.UserContext(), GetCaps(c), c.Query("peer"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MessageListResponse{Items: make([]dto.MessageItem, 0, len(list))}
	for _, m := range list {
		item := messageItem(&m.CompanyMessage)
		item.DocumentHidden = m.DocumentHidden
		out.Items = append(out.Items, item)
	}
	return c.JSON(out)
}

// Forward godoc
// @Summary      Reenviar un documento al chat
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ForwardRequest  true  "Documento y destinatario"
// @Success      201  {object}  dto.MessageItem
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/chat/forward [post]
func (h *ChatHandler) Forward(c *fiber.Ctx) error {
	var in dto.ForwardRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	msg, err := h.uc.Forward(c.UserContext(), GetCaps(c), usecase.ForwardInput{
		DocumentID: in.DocumentID,
		ReceiverID: in.ReceiverID,
		Message:    in.Message,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(messageItem(msg))
}

func messageItem(m *entity.CompanyMessage) dto.MessageItem {
	return dto.MessageItem{
		ID:            m.ID,
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		Message:       m.Message,
		DocumentID:    m.DocumentID,
		DocumentTitle: m.DocumentTitle,
		CreatedAt:     m.CreatedAt,
	}
}
