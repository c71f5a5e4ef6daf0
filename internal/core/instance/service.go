package instance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evocrm/internal/core/events"
	"evocrm/platform/logger"
)

// Service lógica de negócio para instâncias
type Service struct {
	repository Repository
	gateway    Gateway
	logger     *logger.Logger
}

// NewService cria uma nova instância do serviço de instâncias
func NewService(repo Repository, gateway Gateway, logger *logger.Logger) *Service {
	return &Service{
		repository: repo,
		gateway:    gateway,
		logger:     logger,
	}
}

// GetByWebhookName resolve a instância alvo de um webhook pelo path
func (s *Service) GetByWebhookName(ctx context.Context, name string) (*Instance, error) {
	inst, err := s.repository.GetByWebhookName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instance %q: %w", name, err)
	}
	return inst, nil
}

// GetByID busca instância pelo ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Instance, error) {
	inst, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	return inst, nil
}

// ApplyConnectionStatus aplica um evento de conexão normalizado à instância.
// Eventos de conexão só tocam a instância, nunca contatos ou conversas.
func (s *Service) ApplyConnectionStatus(ctx context.Context, inst *Instance, status events.ConnectionStatus) error {
	if err := s.repository.UpdateStatus(ctx, inst.ID, string(status)); err != nil {
		return fmt.Errorf("failed to update instance status: %w", err)
	}

	s.logger.InfoWithFields("Instance connection status updated", map[string]interface{}{
		"instance_id": inst.ID.String(),
		"status":      string(status),
	})

	return nil
}

// ListProviderInstances consulta o fetchInstances do provedor e publica
// resumos normalizados com a credencial redigida
func (s *Service) ListProviderInstances(ctx context.Context) ([]Summary, error) {
	provider, err := s.gateway.FetchInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider instances: %w", err)
	}

	summaries := make([]Summary, 0, len(provider))
	for _, p := range provider {
		summaries = append(summaries, s.toSummary(p))
	}

	return summaries, nil
}

// toSummary normaliza uma instância do provedor para o formato publicado
func (s *Service) toSummary(p ProviderInstance) Summary {
	id := p.InstanceID
	if id == "" {
		id = p.Nome
	}
	if id == "" {
		id = "unknown"
	}

	nome := p.Nome
	if nome == "" {
		nome = "Instância sem nome"
	}

	status := p.State
	if status == "" {
		status = "unknown"
	}

	summary := Summary{
		ID:        id,
		Nome:      nome,
		Status:    status,
		ServerURL: s.gateway.ServerURL(),
		APIKey:    "***hidden***",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if p.WebhookURL != "" {
		summary.WebhookURL = &p.WebhookURL
	}
	if p.PhoneNumber != "" {
		summary.PhoneNumber = &p.PhoneNumber
	}
	if p.ProfileName != "" {
		summary.ProfileName = &p.ProfileName
	}
	if p.ProfilePictureURL != "" {
		summary.ProfilePictureURL = &p.ProfilePictureURL
	}

	return summary
}
