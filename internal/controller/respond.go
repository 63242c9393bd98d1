package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
)

// RespondJSON writes v with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps an error to its status code. Unexpected failures carry
// the notice text instead of the raw error.
func RespondError(w http.ResponseWriter, err error, notice string) {
	var verr *appErrors.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case appErrors.IsNotFound(err):
		RespondJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.Is(err, appErrors.ErrStaleWrite):
		RespondJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "notice": "Record was changed by someone else, reload and try again"})
	default:
		RespondJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error", "notice": notice})
	}
}

// IntParam reads a numeric chi URL parameter.
func IntParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, appErrors.NewValidation(name + " must be a number")
	}
	return id, nil
}
