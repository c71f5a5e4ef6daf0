package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"evocrm/internal/core/chat"
	"evocrm/internal/core/shared/errors"
)

// ConversationRepository implementa a interface chat.ConversationRepository para PostgreSQL
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository cria uma nova instância do repositório de conversas
func NewConversationRepository(db *sqlx.DB) chat.ConversationRepository {
	return &ConversationRepository{
		db: db,
	}
}

// GetOrCreate retorna a conversa do par (instance_id, contato_id), criando
// quando ausente. O DO UPDATE vazio no conflito faz o RETURNING devolver a
// linha existente, então writers concorrentes recebem a mesma conversa.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, conv *chat.Conversation) (*chat.Conversation, error) {
	var persisted chat.Conversation
	query := `
		INSERT INTO conversas (empresa_id, instance_id, contato_id, status, nao_lidas)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (instance_id, contato_id) DO UPDATE SET
			updated_at = conversas.updated_at
		RETURNING id, empresa_id, instance_id, contato_id, status, ultima_mensagem,
			ultima_mensagem_timestamp, nao_lidas, created_at, updated_at
	`

	err := r.db.GetContext(ctx, &persisted, query,
		conv.EmpresaID, conv.InstanceID, conv.ContatoID, conv.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}

	return &persisted, nil
}

// RecordIncoming incrementa nao_lidas e atualiza a projeção de última
// mensagem em um único statement. O contador sempre avança; a projeção só
// avança quando o timestamp não retrocede, para que entregas fora de ordem
// não sobrescrevam uma mensagem mais nova.
func (r *ConversationRepository) RecordIncoming(ctx context.Context, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error {
	query := `
		UPDATE conversas SET
			nao_lidas = nao_lidas + 1,
			ultima_mensagem = CASE
				WHEN ultima_mensagem_timestamp IS NULL OR ultima_mensagem_timestamp <= $3 THEN $2
				ELSE ultima_mensagem
			END,
			ultima_mensagem_timestamp = CASE
				WHEN ultima_mensagem_timestamp IS NULL OR ultima_mensagem_timestamp <= $3 THEN $3
				ELSE ultima_mensagem_timestamp
			END,
			updated_at = NOW()
		WHERE id = $1
	`

	return r.project(ctx, query, id, ultimaMensagem, timestamp)
}

// RecordOutgoing zera nao_lidas e atualiza a projeção de última mensagem
func (r *ConversationRepository) RecordOutgoing(ctx context.Context, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error {
	query := `
		UPDATE conversas SET
			nao_lidas = 0,
			ultima_mensagem = CASE
				WHEN ultima_mensagem_timestamp IS NULL OR ultima_mensagem_timestamp <= $3 THEN $2
				ELSE ultima_mensagem
			END,
			ultima_mensagem_timestamp = CASE
				WHEN ultima_mensagem_timestamp IS NULL OR ultima_mensagem_timestamp <= $3 THEN $3
				ELSE ultima_mensagem_timestamp
			END,
			updated_at = NOW()
		WHERE id = $1
	`

	return r.project(ctx, query, id, ultimaMensagem, timestamp)
}

func (r *ConversationRepository) project(ctx context.Context, query string, id uuid.UUID, ultimaMensagem string, timestamp time.Time) error {
	result, err := r.db.ExecContext(ctx, query, id, ultimaMensagem, timestamp)
	if err != nil {
		return fmt.Errorf("failed to update conversation projection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.ErrConversationNotFound
	}

	return nil
}

// GetByID busca uma conversa pelo ID
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*chat.Conversation, error) {
	var conv chat.Conversation
	query := `
		SELECT id, empresa_id, instance_id, contato_id, status, ultima_mensagem,
			ultima_mensagem_timestamp, nao_lidas, created_at, updated_at
		FROM conversas
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &conv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation by ID: %w", err)
	}

	return &conv, nil
}

// ListByInstance retorna as conversas de uma instância, mais recentes primeiro
func (r *ConversationRepository) ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]*chat.Conversation, error) {
	var conversations []*chat.Conversation
	query := `
		SELECT id, empresa_id, instance_id, contato_id, status, ultima_mensagem,
			ultima_mensagem_timestamp, nao_lidas, created_at, updated_at
		FROM conversas
		WHERE instance_id = $1
		ORDER BY ultima_mensagem_timestamp DESC NULLS LAST
	`

	err := r.db.SelectContext(ctx, &conversations, query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return conversations, nil
}
