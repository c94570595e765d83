package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/waitlist"
)

type waitlistService interface {
	Status(ctx context.Context, phone string) (*waitlist.Status, error)
}

// WaitlistHandler serves the waitlist status lookup. Joining goes through
// FormHandler like every other form.
type WaitlistHandler struct {
	svc waitlistService
	log *slog.Logger
}

// NewWaitlistHandler creates a WaitlistHandler.
func NewWaitlistHandler(svc waitlistService, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{svc: svc, log: logger.With("handler", "waitlist")}
}

type waitlistStatusResponse struct {
	Reference         string    `json:"reference"`
	Position          int       `json:"position"`
	EstimatedWaitTime string    `json:"estimatedWaitTime"`
	JoinedAt          time.Time `json:"joinedAt"`
	Status            string    `json:"status"`
}

// Status handles GET /api/waitlist?phone=.
func (h *WaitlistHandler) Status(w http.ResponseWriter, r *http.Request) {
	phone := phoneParam(r)
	if phone == "" {
		writeError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	st, err := h.svc.Status(r.Context(), phone)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Waitlist entry found", waitlistStatusResponse{
		Reference:         st.Reference,
		Position:          st.Position,
		EstimatedWaitTime: st.EstimatedWaitTime,
		JoinedAt:          st.JoinedAt,
		Status:            st.Status.String(),
	})
}

// phoneParam reads ?phone= and restores a leading '+' that form decoding
// turned into a space, as in ?phone=+447712345678.
func phoneParam(r *http.Request) string {
	phone := r.URL.Query().Get("phone")
	if strings.HasPrefix(phone, " ") && strings.TrimSpace(phone) != "" {
		phone = "+" + strings.TrimLeft(phone, " ")
	}
	return phone
}
