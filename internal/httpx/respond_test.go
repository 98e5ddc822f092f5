package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"optica/internal/errs"
	"optica/internal/vision"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", errs.ErrNotFound, http.StatusNotFound},
		{"forbidden", errs.ErrForbidden, http.StatusForbidden},
		{"unauthenticated", errs.ErrUnauthenticated, http.StatusUnauthorized},
		{"empty cart", errs.ErrEmptyCart, http.StatusBadRequest},
		{"duplicate review", errs.ErrDuplicateReview, http.StatusBadRequest},
		{"validation", errs.Validation("bad input"), http.StatusBadRequest},
		{"insufficient stock", &errs.InsufficientStockError{Name: "Aviator", Requested: 5, Available: 1}, http.StatusBadRequest},
		{"invalid transition", &errs.InvalidTransitionError{From: "SHIPPED", To: "CANCELLED"}, http.StatusBadRequest},
		{"external process", &vision.ExternalError{Op: "face analysis failed", Detail: "no face"}, http.StatusBadGateway},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
