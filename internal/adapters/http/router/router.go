package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evocrm/internal/adapters/http/handler"
	"evocrm/internal/services"
	"evocrm/platform/config"
	"evocrm/platform/logger"
)

// SetupRoutes configura todas as rotas da aplicação
func SetupRoutes(
	cfg *config.Config,
	logger *logger.Logger,
	webhookService *services.WebhookService,
	messageService *services.MessageService,
	instanceService *services.InstanceService,
	conversationService *services.ConversationService,
) http.Handler {
	r := chi.NewRouter()

	setupMiddlewares(r, cfg, logger)
	setupHealthRoutes(r)

	webhookHandler := handler.NewWebhookHandler(webhookService, logger)
	messageHandler := handler.NewMessageHandler(messageService, logger)
	instanceHandler := handler.NewInstanceHandler(instanceService, logger)
	conversationHandler := handler.NewConversationHandler(conversationService, logger)

	// O provedor às vezes anexa o nome do evento ao path do webhook,
	// então o sufixo extra também precisa casar. Sem o segmento da
	// instância a requisição é inválida, não inexistente
	r.Post("/webhook", webhookHandler.Receive)
	r.Post("/webhook/", webhookHandler.Receive)
	r.Post("/webhook/{instanceName}", webhookHandler.Receive)
	r.Post("/webhook/{instanceName}/*", webhookHandler.Receive)

	r.Post("/messages/send", messageHandler.SendText)

	r.Get("/instances", instanceHandler.ListProvider)
	r.Get("/instances/db", instanceHandler.ListStored)

	r.Get("/conversations", conversationHandler.List)
	r.Get("/conversations/{conversationId}/messages", conversationHandler.ListMessages)

	return r
}

// setupHealthRoutes configura rotas de health check
func setupHealthRoutes(r *chi.Mux) {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"evocrm"}`))
	})
}
