package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"evocrm/internal/core/instance"
	"evocrm/internal/core/shared/errors"
	apperrors "evocrm/pkg/errors"
	"evocrm/platform/logger"
)

// InstanceService implementa a camada de aplicação para instâncias
type InstanceService struct {
	instanceCore *instance.Service
	instanceRepo instance.Repository
	logger       *logger.Logger
}

// NewInstanceService cria nova instância do serviço de instâncias
func NewInstanceService(
	instanceCore *instance.Service,
	instanceRepo instance.Repository,
	logger *logger.Logger,
) *InstanceService {
	return &InstanceService{
		instanceCore: instanceCore,
		instanceRepo: instanceRepo,
		logger:       logger,
	}
}

// ListProvider lista as instâncias registradas no provedor, com credencial oculta
func (s *InstanceService) ListProvider(ctx context.Context) ([]instance.Summary, error) {
	summaries, err := s.instanceCore.ListProviderInstances(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Provider instance listing failed")
		return nil, apperrors.ErrEvolutionFetchFailed
	}

	return summaries, nil
}

// ListStored lista as instâncias persistidas de uma empresa
func (s *InstanceService) ListStored(ctx context.Context, empresaID string) ([]*instance.Instance, error) {
	id, err := uuid.Parse(empresaID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid empresa ID", errors.ErrInvalidInput)
	}

	return s.instanceRepo.List(ctx, id)
}
