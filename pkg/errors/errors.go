package errors

import (
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewWithDetails(code int, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

var (
	ErrBadRequest          = New(http.StatusBadRequest, "Bad request")
	ErrNotFound            = New(http.StatusNotFound, "Not found")
	ErrConflict            = New(http.StatusConflict, "Conflict")
	ErrInternalServerError = New(http.StatusInternalServerError, "Internal server error")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "Service unavailable")

	ErrInstanceNotFound    = New(http.StatusNotFound, "Instance not found")
	ErrInstanceNameMissing = New(http.StatusBadRequest, "Instance name required in path")
	ErrInvalidPhoneNumber  = New(http.StatusBadRequest, "Invalid phone number")

	ErrEvolutionSendFailed  = New(http.StatusInternalServerError, "Failed to send message via Evolution API")
	ErrEvolutionFetchFailed = New(http.StatusInternalServerError, "Failed to fetch instances from Evolution API")

	ErrConversationNotFound = New(http.StatusNotFound, "Conversation not found")
)

func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewWithDetails(http.StatusInternalServerError, "Internal server error", err.Error())
}
