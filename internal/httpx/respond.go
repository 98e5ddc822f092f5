package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"optica/internal/errs"
	"optica/internal/vision"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the core error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal failure; its detail stays in the log.
func writeError(w http.ResponseWriter, err error) {
	var ee *vision.ExternalError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, errs.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, errs.ErrEmptyCart),
		errors.Is(err, errs.ErrDuplicateReview),
		errs.IsValidation(err),
		errs.IsInsufficientStock(err),
		errs.IsInvalidTransition(err):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &ee):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: ee.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
