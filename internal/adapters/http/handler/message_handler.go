package handler

import (
	"net/http"

	"evocrm/internal/adapters/http/shared"
	"evocrm/internal/services"
	"evocrm/platform/logger"
)

// MessageHandler implementa handlers REST para envio de mensagens
type MessageHandler struct {
	*shared.BaseHandler
	messageService *services.MessageService
}

// NewMessageHandler cria nova instância do handler de mensagens
func NewMessageHandler(messageService *services.MessageService, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    shared.NewBaseHandler(logger),
		messageService: messageService,
	}
}

// SendText envia uma mensagem de texto pela instância informada
func (h *MessageHandler) SendText(w http.ResponseWriter, r *http.Request) {
	h.LogRequest(r, "send text message")

	var req services.SendTextRequest
	if err := h.ParseJSONBody(r, &req); err != nil {
		h.GetWriter().WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.messageService.SendText(r.Context(), &req)
	if err != nil {
		h.HandleError(w, err, "send text message")
		return
	}

	// data é a resposta do provedor verbatim; o id da conversa criada
	// viaja no header para não poluir o contrato
	w.Header().Set("X-Conversation-Id", resp.ConversaID)
	var data interface{}
	if len(resp.Provider) > 0 {
		data = resp.Provider
	}
	h.GetWriter().WriteSuccess(w, data, "Message sent successfully")
}
