package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError переводит ошибку сервиса в HTTP статус
func WriteError(w http.ResponseWriter, err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: verrs})
	}

	status, message := statusOf(err)
	return WriteJSON(w, status, ErrorResponse{Error: message})
}

func statusOf(err error) (int, string) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrPermission):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrSlotConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrPastDate), errors.Is(err, service.ErrInvalidTeacher):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case service.IsValidationError(err), errors.Is(err, errBadParam):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
