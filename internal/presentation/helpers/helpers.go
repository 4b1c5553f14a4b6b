package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

// WriteJSON renders v with status. A value that cannot be encoded becomes a
// 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// WriteError renders {"error": ...} with the status StatusFor picks and
// returns that status.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	WriteJSON(w, status, map[string]string{"error": err.Error()})
	return status
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyOrUnparseable), errors.Is(err, domain.ErrUnexpectedPayloadType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingSignature), errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
