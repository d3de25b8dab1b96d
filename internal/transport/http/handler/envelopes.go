package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hisworks-api/internal/domain"
	"github.com/hisworks-api/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// SendEnvelope wraps a manual send response.
type SendEnvelope struct {
	Reminder *domain.Reminder `json:"reminder,omitempty"`
	Tickets  []domain.Ticket  `json:"tickets"`
	Error    string           `json:"error,omitempty"`
}

// RunEnvelope wraps a scheduler run response.
type RunEnvelope struct {
	Result *domain.RunResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// DeletedEnvelope reports how many records a cascade removed.
type DeletedEnvelope struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to status codes; anything else is a 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeValid decodes the JSON body into dst and validates it. It writes the error response
// and returns false on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}
