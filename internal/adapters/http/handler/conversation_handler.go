package handler

import (
	"net/http"

	"evocrm/internal/adapters/http/shared"
	"evocrm/internal/services"
	"evocrm/platform/logger"
)

// ConversationHandler implementa handlers REST de leitura de conversas
type ConversationHandler struct {
	*shared.BaseHandler
	conversationService *services.ConversationService
}

// NewConversationHandler cria nova instância do handler de conversas
func NewConversationHandler(conversationService *services.ConversationService, logger *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		BaseHandler:         shared.NewBaseHandler(logger),
		conversationService: conversationService,
	}
}

// List lista conversas de uma instância, mais recentes primeiro
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	h.LogRequest(r, "list conversations")

	instanceID := h.GetQueryString(r, "instanceId")
	if instanceID == "" {
		h.GetWriter().WriteBadRequest(w, "instanceId query parameter is required")
		return
	}

	conversations, err := h.conversationService.ListByInstance(r.Context(), instanceID)
	if err != nil {
		h.HandleError(w, err, "list conversations")
		return
	}

	h.GetWriter().WriteSuccess(w, conversations)
}

// ListMessages lista as mensagens de uma conversa em ordem cronológica
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	h.LogRequest(r, "list conversation messages")

	conversationID, err := h.GetStringParam(r, "conversationId")
	if err != nil {
		h.GetWriter().WriteBadRequest(w, err.Error())
		return
	}

	limit, offset, err := h.GetPaginationParams(r)
	if err != nil {
		h.GetWriter().WriteBadRequest(w, err.Error())
		return
	}

	messages, err := h.conversationService.ListMessages(r.Context(), conversationID, limit, offset)
	if err != nil {
		h.HandleError(w, err, "list conversation messages")
		return
	}

	h.GetWriter().WriteSuccess(w, messages)
}
