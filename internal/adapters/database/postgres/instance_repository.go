package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"evocrm/internal/core/instance"
	"evocrm/internal/core/shared/errors"
)

// InstanceRepository implementa a interface instance.Repository para PostgreSQL
type InstanceRepository struct {
	db *sqlx.DB
}

// NewInstanceRepository cria uma nova instância do repositório de instâncias
func NewInstanceRepository(db *sqlx.DB) instance.Repository {
	return &InstanceRepository{
		db: db,
	}
}

// GetByID busca uma instância pelo ID
func (r *InstanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*instance.Instance, error) {
	var inst instance.Instance
	query := `
		SELECT id, empresa_id, nome, status, server_url, api_key, webhook_url, created_at, updated_at
		FROM instances
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &inst, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get instance by ID: %w", err)
	}

	return &inst, nil
}

// GetByWebhookName busca uma instância pelo segmento de path do webhook.
// O provedor troca espaços por hífens ao montar a URL, então a comparação
// normaliza hífen para espaço e ignora caixa dos dois lados.
func (r *InstanceRepository) GetByWebhookName(ctx context.Context, name string) (*instance.Instance, error) {
	var inst instance.Instance
	query := `
		SELECT id, empresa_id, nome, status, server_url, api_key, webhook_url, created_at, updated_at
		FROM instances
		WHERE LOWER(REPLACE(nome, '-', ' ')) = LOWER(REPLACE($1, '-', ' '))
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &inst, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get instance by webhook name: %w", err)
	}

	return &inst, nil
}

// UpdateStatus atualiza o status de conexão de uma instância
func (r *InstanceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE instances
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update instance status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.ErrInstanceNotFound
	}

	return nil
}

// List retorna as instâncias de uma empresa ordenadas por nome
func (r *InstanceRepository) List(ctx context.Context, empresaID uuid.UUID) ([]*instance.Instance, error) {
	var instances []*instance.Instance
	query := `
		SELECT id, empresa_id, nome, status, server_url, api_key, webhook_url, created_at, updated_at
		FROM instances
		WHERE empresa_id = $1
		ORDER BY nome
	`

	err := r.db.SelectContext(ctx, &instances, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	return instances, nil
}
