package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"go.uber.org/zap"
)

type dataEnvelope struct {
	Data       any                `json:"data"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writePage(w http.ResponseWriter, data any, pagination domain.Pagination) {
	writeJSON(w, http.StatusOK, dataEnvelope{Data: data, Pagination: &pagination})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message})
}

// respondError maps error kinds to status codes. Unknown kinds become
// an opaque 500; the cause is logged, never echoed to the client.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
