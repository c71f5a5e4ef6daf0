package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"evocrm/internal/core/chat"
	"evocrm/internal/core/instance"
	"evocrm/internal/core/shared/errors"
	"evocrm/internal/services/shared/validation"
	"evocrm/platform/logger"
)

// MessageService implementa a camada de aplicação para envio de mensagens
type MessageService struct {
	instanceCore *instance.Service
	resolver     *chat.Resolver
	reconciler   *chat.Reconciler
	gateway      instance.Gateway

	logger    *logger.Logger
	validator *validation.Validator
}

// NewMessageService cria nova instância do serviço de mensagens
func NewMessageService(
	instanceCore *instance.Service,
	resolver *chat.Resolver,
	reconciler *chat.Reconciler,
	gateway instance.Gateway,
	logger *logger.Logger,
	validator *validation.Validator,
) *MessageService {
	return &MessageService{
		instanceCore: instanceCore,
		resolver:     resolver,
		reconciler:   reconciler,
		gateway:      gateway,
		logger:       logger,
		validator:    validator,
	}
}

// SendTextRequest DTO para envio de mensagem de texto
type SendTextRequest struct {
	InstanceID string `json:"instanceId" validate:"required,uuid"`
	Numero     string `json:"phoneNumber" validate:"required,phone_digits"`
	Texto      string `json:"message" validate:"required,min=1"`
}

// SendTextResponse resultado do envio. Provider carrega a resposta do
// sendText verbatim: o cliente HTTP recebe exatamente o que o provedor
// devolveu.
type SendTextResponse struct {
	ConversaID string
	Provider   json.RawMessage
}

// providerSendResponse fatia da resposta do sendText usada para dedup
type providerSendResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

// SendText entrega a mensagem ao provedor e, só depois da confirmação,
// registra a conversa e a mensagem de saída. Falha do provedor não deixa
// rastro no banco.
func (s *MessageService) SendText(ctx context.Context, req *SendTextRequest) (*SendTextResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidInput, err.Error())
	}

	instanceID, err := uuid.Parse(req.InstanceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid instance ID", errors.ErrInvalidInput)
	}

	inst, err := s.instanceCore.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	providerBody, err := s.gateway.SendText(ctx, inst, req.Numero, req.Texto)
	if err != nil {
		s.logger.WithInstance(inst.ID.String()).WithError(err).Error("Provider rejected outbound message")
		return nil, fmt.Errorf("%w: %s", errors.ErrUpstreamDelivery, err.Error())
	}

	var providerResp providerSendResponse
	// Resposta do provedor é oportunista: sem key.id a mensagem fica fora do dedup
	_ = json.Unmarshal(providerBody, &providerResp)

	_, conv, err := s.resolver.Resolve(ctx, inst, req.Numero, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}

	if err := s.reconciler.RecordOutgoing(ctx, inst, conv, req.Numero, req.Texto, providerResp.Key.ID); err != nil {
		return nil, fmt.Errorf("failed to record outbound message: %w", err)
	}

	resp := &SendTextResponse{ConversaID: conv.ID.String()}
	if json.Valid(providerBody) {
		resp.Provider = providerBody
	}
	return resp, nil
}
