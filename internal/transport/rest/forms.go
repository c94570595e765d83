package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/intake"
)

// intakeService defines the minimal interface needed by FormHandler.
type intakeService interface {
	Submit(ctx context.Context, f intake.Form) (*intake.Result, error)
}

// FormHandler serves the public form endpoints.
type FormHandler struct {
	svc          intakeService
	log          *slog.Logger
	maxBodyBytes int64
}

// NewFormHandler creates a FormHandler.
func NewFormHandler(svc intakeService, maxBodyBytes int64, logger *slog.Logger) *FormHandler {
	return &FormHandler{svc: svc, log: logger.With("handler", "forms"), maxBodyBytes: maxBodyBytes}
}

type submissionResponse struct {
	ID                string    `json:"id"`
	Reference         string    `json:"reference"`
	SubmittedAt       time.Time `json:"submittedAt"`
	Position          *int      `json:"position,omitempty"`
	EstimatedWaitTime string    `json:"estimatedWaitTime,omitempty"`
}

var successMessages = map[domain.FormType]string{
	domain.FormRegistration:    "Registration submitted successfully",
	domain.FormMedical:         "Medical form submitted successfully",
	domain.FormConsent:         "Consent form submitted successfully",
	domain.FormFunding:         "Funding application submitted successfully",
	domain.FormChangeOfDetails: "Change of details submitted successfully",
	domain.FormAboutMe:         "About me form submitted successfully",
	domain.FormJobApplication:  "Application submitted successfully",
	domain.FormWaitlist:        "Successfully joined the waitlist",
	domain.FormContact:         "Message sent successfully",
	domain.FormAvailability:    "Availability request submitted successfully",
}

// Submit returns the POST handler for one form type.
func (h *FormHandler) Submit(t domain.FormType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := intake.NewForm(t); !ok {
			writeError(w, http.StatusNotFound, "Unknown form")
			return
		}
		form, ok := h.decode(w, r, t)
		if !ok {
			return
		}

		res, err := h.svc.Submit(r.Context(), form)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		writeSuccess(w, http.StatusCreated, successMessages[t], submissionResponse{
			ID:                res.ID.String(),
			Reference:         res.Reference,
			SubmittedAt:       res.SubmittedAt,
			Position:          res.Position,
			EstimatedWaitTime: res.EstimatedWaitTime,
		})
	}
}

func (h *FormHandler) decode(w http.ResponseWriter, r *http.Request, t domain.FormType) (intake.Form, bool) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", "The request body could not be read")
		return nil, false
	}
	form, err := intake.Decode(t, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "The request body must be a JSON object")
		return nil, false
	}
	return form, true
}
