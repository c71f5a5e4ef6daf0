package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"evocrm/internal/core/chat"
	"evocrm/internal/core/shared/errors"
	"evocrm/platform/logger"
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 100
)

// ConversationService implementa a camada de aplicação para leitura de conversas
type ConversationService struct {
	conversations chat.ConversationRepository
	messages      chat.MessageRepository
	logger        *logger.Logger
}

// NewConversationService cria nova instância do serviço de conversas
func NewConversationService(
	conversations chat.ConversationRepository,
	messages chat.MessageRepository,
	logger *logger.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		logger:        logger,
	}
}

// ListByInstance lista as conversas de uma instância, mais recentes primeiro
func (s *ConversationService) ListByInstance(ctx context.Context, instanceID string) ([]*chat.Conversation, error) {
	id, err := uuid.Parse(instanceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid instance ID", errors.ErrInvalidInput)
	}

	return s.conversations.ListByInstance(ctx, id)
}

// ListMessages lista mensagens de uma conversa em ordem cronológica
func (s *ConversationService) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*chat.Message, error) {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid conversation ID", errors.ErrInvalidInput)
	}

	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}
	if offset < 0 {
		offset = 0
	}

	// Confirma que a conversa existe antes de paginar
	if _, err := s.conversations.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.messages.ListByConversation(ctx, id, limit, offset)
}
