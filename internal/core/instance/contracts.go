package instance

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Repository porta de persistência para instâncias
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Instance, error)
	// GetByWebhookName busca instância pelo segmento do path do webhook.
	// A comparação ignora caixa e trata hífen como espaço.
	GetByWebhookName(ctx context.Context, name string) (*Instance, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, empresaID uuid.UUID) ([]*Instance, error)
}

// Gateway porta para a Evolution API externa
type Gateway interface {
	// SendText envia mensagem de texto; retorna o corpo bruto da resposta
	// do provedor em caso de sucesso
	SendText(ctx context.Context, inst *Instance, numero, texto string) (json.RawMessage, error)
	FetchInstances(ctx context.Context) ([]ProviderInstance, error)
	ServerURL() string
}
