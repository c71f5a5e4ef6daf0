package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"evocrm/internal/core/chat"
)

// MessageRepository implementa a interface chat.MessageRepository para PostgreSQL
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository cria uma nova instância do repositório de mensagens
func NewMessageRepository(db *sqlx.DB) chat.MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

// Create insere uma mensagem. Redelivery do mesmo provider_message_id na
// mesma conversa cai no índice único parcial e retorna (false, nil) sem
// tocar a linha existente.
func (r *MessageRepository) Create(ctx context.Context, msg *chat.Message) (bool, error) {
	query := `
		INSERT INTO mensagens (
			empresa_id, conversa_id, numero_remetente, numero_destinatario,
			conteudo, tipo, direcao, provider_message_id, timestamp_evolution, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (conversa_id, provider_message_id) WHERE provider_message_id IS NOT NULL
		DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		msg.EmpresaID, msg.ConversaID, msg.NumeroRemetente, msg.NumeroDestinatario,
		msg.Conteudo, msg.Tipo, msg.Direcao, msg.ProviderMessageID, msg.TimestampEvolution, msg.Status)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("failed to create message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListByConversation retorna as mensagens de uma conversa em ordem cronológica
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*chat.Message, error) {
	var messages []*chat.Message
	query := `
		SELECT id, empresa_id, conversa_id, numero_remetente, numero_destinatario,
			conteudo, tipo, direcao, provider_message_id, timestamp_evolution, status, created_at
		FROM mensagens
		WHERE conversa_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}
