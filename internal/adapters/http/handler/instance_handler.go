package handler

import (
	"net/http"

	"evocrm/internal/adapters/http/shared"
	"evocrm/internal/services"
	"evocrm/platform/logger"
)

// InstanceHandler implementa handlers REST para instâncias
type InstanceHandler struct {
	*shared.BaseHandler
	instanceService *services.InstanceService
}

// NewInstanceHandler cria nova instância do handler de instâncias
func NewInstanceHandler(instanceService *services.InstanceService, logger *logger.Logger) *InstanceHandler {
	return &InstanceHandler{
		BaseHandler:     shared.NewBaseHandler(logger),
		instanceService: instanceService,
	}
}

// ListProvider lista as instâncias registradas no provedor, sem credenciais
func (h *InstanceHandler) ListProvider(w http.ResponseWriter, r *http.Request) {
	h.LogRequest(r, "list provider instances")

	summaries, err := h.instanceService.ListProvider(r.Context())
	if err != nil {
		h.HandleError(w, err, "list provider instances")
		return
	}

	h.GetWriter().WriteSuccess(w, summaries)
}

// ListStored lista as instâncias persistidas de uma empresa
func (h *InstanceHandler) ListStored(w http.ResponseWriter, r *http.Request) {
	h.LogRequest(r, "list stored instances")

	empresaID := h.GetQueryString(r, "empresaId")
	if empresaID == "" {
		h.GetWriter().WriteBadRequest(w, "empresaId query parameter is required")
		return
	}

	instances, err := h.instanceService.ListStored(r.Context(), empresaID)
	if err != nil {
		h.HandleError(w, err, "list stored instances")
		return
	}

	h.GetWriter().WriteSuccess(w, instances)
}
