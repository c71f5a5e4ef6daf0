package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"evocrm/internal/core/chat"
	"evocrm/internal/core/shared/errors"
)

// ContactRepository implementa a interface chat.ContactRepository para PostgreSQL
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository cria uma nova instância do repositório de contatos
func NewContactRepository(db *sqlx.DB) chat.ContactRepository {
	return &ContactRepository{
		db: db,
	}
}

// Upsert cria ou atualiza o contato por (instance_id, numero) em um único
// statement. O nome armazenado só é preenchido quando está vazio; writers
// concorrentes do mesmo par convergem para a mesma linha.
func (r *ContactRepository) Upsert(ctx context.Context, contact *chat.Contact) (*chat.Contact, error) {
	var persisted chat.Contact
	query := `
		INSERT INTO contatos (empresa_id, instance_id, numero, nome, ultima_interacao)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (instance_id, numero) DO UPDATE SET
			nome = COALESCE(NULLIF(contatos.nome, ''), EXCLUDED.nome),
			ultima_interacao = EXCLUDED.ultima_interacao,
			updated_at = NOW()
		RETURNING id, empresa_id, instance_id, numero, nome, avatar_url, ultima_interacao, created_at, updated_at
	`

	err := r.db.GetContext(ctx, &persisted, query,
		contact.EmpresaID, contact.InstanceID, contact.Numero, contact.Nome, contact.UltimaInteracao)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}

	return &persisted, nil
}

// UpsertProfile aplica um registro de lote contacts.upsert. O lote é a
// fonte mais rica do perfil: nome não vazio sobrescreve o armazenado
// (vazio nunca rebaixa), e avatar_url é sobrescrito quando o lote traz
// um valor
func (r *ContactRepository) UpsertProfile(ctx context.Context, contact *chat.Contact) error {
	query := `
		INSERT INTO contatos (empresa_id, instance_id, numero, nome, avatar_url, ultima_interacao)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (instance_id, numero) DO UPDATE SET
			nome = COALESCE(NULLIF(EXCLUDED.nome, ''), contatos.nome),
			avatar_url = COALESCE(EXCLUDED.avatar_url, contatos.avatar_url),
			ultima_interacao = EXCLUDED.ultima_interacao,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		contact.EmpresaID, contact.InstanceID, contact.Numero, contact.Nome, contact.AvatarURL, contact.UltimaInteracao)
	if err != nil {
		return fmt.Errorf("failed to upsert contact profile: %w", err)
	}

	return nil
}

// GetByNumero busca um contato pelo número dentro de uma instância
func (r *ContactRepository) GetByNumero(ctx context.Context, instanceID uuid.UUID, numero string) (*chat.Contact, error) {
	var contact chat.Contact
	query := `
		SELECT id, empresa_id, instance_id, numero, nome, avatar_url, ultima_interacao, created_at, updated_at
		FROM contatos
		WHERE instance_id = $1 AND numero = $2
	`

	err := r.db.GetContext(ctx, &contact, query, instanceID, numero)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact by numero: %w", err)
	}

	return &contact, nil
}
