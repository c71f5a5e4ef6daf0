package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	sharederrors "evocrm/internal/core/shared/errors"
	"evocrm/internal/services/shared/validation"
	apperrors "evocrm/pkg/errors"
	"evocrm/platform/logger"
)

// BaseHandler fornece funcionalidades comuns para todos os handlers HTTP
type BaseHandler struct {
	logger    *logger.Logger
	writer    *ResponseWriter
	validator *validation.Validator
}

// NewBaseHandler cria nova instância do base handler
func NewBaseHandler(logger *logger.Logger) *BaseHandler {
	return &BaseHandler{
		logger:    logger,
		writer:    NewResponseWriter(logger),
		validator: validation.New(),
	}
}

// GetLogger retorna logger do handler
func (h *BaseHandler) GetLogger() *logger.Logger {
	return h.logger
}

// GetWriter retorna response writer
func (h *BaseHandler) GetWriter() *ResponseWriter {
	return h.writer
}

// GetValidator retorna validator
func (h *BaseHandler) GetValidator() *validation.Validator {
	return h.validator
}

// GetStringParam extrai parâmetro string da URL
func (h *BaseHandler) GetStringParam(r *http.Request, paramName string) (string, error) {
	value := chi.URLParam(r, paramName)
	if value == "" {
		return "", fmt.Errorf("%s is required", paramName)
	}
	return value, nil
}

// GetQueryString extrai parâmetro string da query
func (h *BaseHandler) GetQueryString(r *http.Request, paramName string, defaultValue ...string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// GetQueryInt extrai parâmetro int da query
func (h *BaseHandler) GetQueryInt(r *http.Request, paramName string, defaultValue ...int) (int, error) {
	valueStr := r.URL.Query().Get(paramName)
	if valueStr == "" {
		if len(defaultValue) > 0 {
			return defaultValue[0], nil
		}
		return 0, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", paramName, err)
	}

	return value, nil
}

// GetPaginationParams extrai parâmetros de paginação da query
func (h *BaseHandler) GetPaginationParams(r *http.Request) (limit, offset int, err error) {
	limit, err = h.GetQueryInt(r, "limit", 50)
	if err != nil {
		return 0, 0, err
	}

	offset, err = h.GetQueryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}

	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}

// ParseJSONBody faz parse do body JSON para struct
func (h *BaseHandler) ParseJSONBody(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}

	return nil
}

// HandleError processa erro e escreve resposta apropriada
func (h *BaseHandler) HandleError(w http.ResponseWriter, err error, operation string) {
	h.logger.ErrorWithFields(fmt.Sprintf("Failed to %s", operation), map[string]interface{}{
		"error": err.Error(),
	})

	// Erros já tipados para HTTP carregam o próprio status
	if apperrors.IsAppError(err) {
		appErr := apperrors.GetAppError(err)
		if appErr.Details != "" {
			h.writer.WriteError(w, appErr.Code, appErr.Message, appErr.Details)
		} else {
			h.writer.WriteError(w, appErr.Code, appErr.Message)
		}
		return
	}

	statusCode := h.getStatusCodeFromError(err)
	message := h.getMessageFromError(err, operation)

	h.writer.WriteError(w, statusCode, message)
}

// getStatusCodeFromError determina status code baseado no erro
func (h *BaseHandler) getStatusCodeFromError(err error) int {
	switch {
	case errors.Is(err, sharederrors.ErrInstanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharederrors.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharederrors.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharederrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharederrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, sharederrors.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// getMessageFromError determina mensagem baseada no erro
func (h *BaseHandler) getMessageFromError(err error, operation string) string {
	switch {
	case errors.Is(err, sharederrors.ErrInstanceNotFound):
		return "Instance not found"
	case errors.Is(err, sharederrors.ErrContactNotFound):
		return "Contact not found"
	case errors.Is(err, sharederrors.ErrConversationNotFound):
		return "Conversation not found"
	case errors.Is(err, sharederrors.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, sharederrors.ErrUpstreamDelivery):
		return "Failed to send message via Evolution API"
	default:
		return fmt.Sprintf("Failed to %s", operation)
	}
}

// LogRequest registra informações da requisição
func (h *BaseHandler) LogRequest(r *http.Request, operation string) {
	h.logger.InfoWithFields(fmt.Sprintf("Processing %s request", operation), map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	})
}
