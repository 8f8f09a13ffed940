package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/authz"
	"github.com/shrimpsizemoose/semla/internal/grading"
	"github.com/shrimpsizemoose/semla/internal/metrics"
	"github.com/shrimpsizemoose/semla/internal/store"
)

// statusFor maps service errors onto HTTP statuses. Every handler goes
// through this single table so the same failure never answers with two
// different codes on two screens.
func statusFor(err error) int {
	var denial *authz.DenialError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, app.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &denial):
		return http.StatusForbidden
	case errors.Is(err, app.ErrValidation),
		errors.Is(err, grading.ErrEmptyGrade),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, grading.ErrAlreadyGraded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}

	logger.Debug.Printf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	if status == http.StatusUnauthorized {
		metrics.AuthFailuresTotal.Inc()
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func observe(endpoint string, start time.Time, method string) {
	metrics.APIRequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
}
