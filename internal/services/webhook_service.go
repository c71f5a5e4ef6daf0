package services

import (
	"context"
	"fmt"
	"time"

	"evocrm/internal/core/chat"
	"evocrm/internal/core/events"
	"evocrm/internal/core/instance"
	"evocrm/platform/logger"
)

// WebhookService implementa a camada de aplicação para eventos do provedor.
// Recebe o corpo bruto do webhook, normaliza e despacha para o núcleo.
type WebhookService struct {
	instanceCore *instance.Service
	resolver     *chat.Resolver
	reconciler   *chat.Reconciler
	logger       *logger.Logger
}

// NewWebhookService cria nova instância do serviço de webhook
func NewWebhookService(
	instanceCore *instance.Service,
	resolver *chat.Resolver,
	reconciler *chat.Reconciler,
	logger *logger.Logger,
) *WebhookService {
	return &WebhookService{
		instanceCore: instanceCore,
		resolver:     resolver,
		reconciler:   reconciler,
		logger:       logger,
	}
}

// WebhookResult resultado do processamento de um evento
type WebhookResult struct {
	Event string `json:"event"`
}

// Process trata um evento entregue no path da instância informada.
// Eventos não reconhecidos são registrados e respondidos com sucesso para
// que o provedor não fique reentregando.
func (s *WebhookService) Process(ctx context.Context, instanceName string, body []byte) (*WebhookResult, error) {
	inst, err := s.instanceCore.GetByWebhookName(ctx, instanceName)
	if err != nil {
		return nil, err
	}

	evt := events.Normalize(body, time.Now().UTC())
	log := s.logger.WithInstance(inst.ID.String()).WithEvent(evt.Event)

	switch evt.Kind {
	case events.KindMessage:
		if err := s.processMessage(ctx, inst, evt.Message); err != nil {
			return nil, err
		}

	case events.KindConnection:
		if err := s.instanceCore.ApplyConnectionStatus(ctx, inst, evt.Status); err != nil {
			return nil, err
		}

	case events.KindContacts:
		if err := s.reconciler.ApplyContacts(ctx, inst, evt.Contacts); err != nil {
			return nil, err
		}

	default:
		log.InfoWithFields("Unrecognized webhook event ignored", map[string]interface{}{
			"event": evt.Event,
		})
	}

	return &WebhookResult{Event: evt.Event}, nil
}

func (s *WebhookService) processMessage(ctx context.Context, inst *instance.Instance, msg *events.MessageEvent) error {
	if msg == nil {
		return fmt.Errorf("message event without payload")
	}

	_, conv, err := s.resolver.Resolve(ctx, inst, msg.Numero, msg.PushName)
	if err != nil {
		return fmt.Errorf("failed to resolve conversation: %w", err)
	}

	if msg.Incoming {
		return s.reconciler.RecordIncoming(ctx, inst, conv, msg)
	}

	// Mensagem enviada por outro cliente conectado à mesma conta
	return s.reconciler.RecordOutgoing(ctx, inst, conv, msg.Numero, msg.Conteudo, msg.ProviderMessageID)
}
