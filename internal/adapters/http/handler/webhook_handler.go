package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evocrm/internal/adapters/http/shared"
	"evocrm/internal/services"
	"evocrm/platform/logger"
)

// WebhookHandler implementa o endpoint de recebimento de eventos do provedor
type WebhookHandler struct {
	*shared.BaseHandler
	webhookService *services.WebhookService
}

// NewWebhookHandler cria nova instância do handler de webhook
func NewWebhookHandler(webhookService *services.WebhookService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    shared.NewBaseHandler(logger),
		webhookService: webhookService,
	}
}

// webhookAck confirmação devolvida ao provedor
type webhookAck struct {
	Success   bool   `json:"success"`
	Processed string `json:"processed"`
}

// Receive processa um evento POST /webhook/{instanceName}. Eventos não
// reconhecidos também respondem 200 para o provedor parar de reentregar.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	instanceName := chi.URLParam(r, "instanceName")
	if instanceName == "" {
		h.GetWriter().WriteBadRequest(w, "Instance name required in path")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.GetWriter().WriteBadRequest(w, "Failed to read request body")
		return
	}

	result, err := h.webhookService.Process(r.Context(), instanceName, body)
	if err != nil {
		h.HandleError(w, err, "process webhook event")
		return
	}

	h.GetWriter().WriteJSON(w, http.StatusOK, webhookAck{
		Success:   true,
		Processed: result.Event,
	})
}
