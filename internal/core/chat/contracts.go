package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContactRepository porta de persistência para contatos
type ContactRepository interface {
	// Upsert cria ou atualiza o contato por (instance_id, numero) de forma
	// atômica e retorna a linha persistida. Em atualização, toca
	// ultima_interacao e só preenche nome quando o armazenado está vazio.
	Upsert(ctx context.Context, contact *Contact) (*Contact, error)

	// UpsertProfile igual ao Upsert, mas também aplica avatar_url,
	// usado por lotes de contacts.upsert
	UpsertProfile(ctx context.Context, contact *Contact) error

	GetByNumero(ctx context.Context, instanceID uuid.UUID, numero string) (*Contact, error)
}

// ConversationRepository porta de persistência para conversas
type ConversationRepository interface {
	// GetOrCreate retorna a conversa do par (instance_id, contato_id),
	// criando com status open e nao_lidas 0 quando ausente. Idempotente
	// sob concorrência.
	GetOrCreate(ctx context.Context, conv *Conversation) (*Conversation, error)

	// RecordIncoming atualiza a projeção e incrementa nao_lidas em um
	// único statement atômico
	RecordIncoming(ctx context.Context, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error

	// RecordOutgoing atualiza a projeção e zera nao_lidas
	RecordOutgoing(ctx context.Context, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error

	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]*Conversation, error)
}

// MessageRepository porta de persistência para mensagens
type MessageRepository interface {
	// Create insere a mensagem. Retorna false sem erro quando o
	// provider_message_id já existe na conversa (redelivery).
	Create(ctx context.Context, msg *Message) (bool, error)

	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*Message, error)
}
