package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

// envelope is the response shape of every public endpoint.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: errs})
}

// handleError maps domain errors onto status codes. Anything unrecognised is
// logged and answered with a generic 500.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		re *domain.RateLimitedError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "Validation failed", ve.Messages()...)
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, ce.Message)
	case errors.As(err, &re):
		writeError(w, http.StatusTooManyRequests, re.Message)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal server error",
			"An unexpected error occurred. Please try again later.")
	}
}
