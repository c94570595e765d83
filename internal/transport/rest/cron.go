package rest

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// CronHandler serves scheduled maintenance endpoints.
type CronHandler struct {
	db     storePinger
	secret string
	log    *slog.Logger
}

// NewCronHandler creates a CronHandler. An empty secret disables the endpoints.
func NewCronHandler(db storePinger, secret string, logger *slog.Logger) *CronHandler {
	return &CronHandler{db: db, secret: secret, log: logger.With("handler", "cron")}
}

type keepAliveResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Latency   string    `json:"latency"`
}

// KeepAlive handles GET /api/cron/keep-alive by pinging the store.
func (h *CronHandler) KeepAlive(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		h.log.ErrorContext(r.Context(), "keep-alive called but CRON_SECRET is not configured")
		writeError(w, http.StatusInternalServerError, "Cron secret not configured")
		return
	}
	token := extractBearer(r)
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		h.log.ErrorContext(r.Context(), "keep-alive ping failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Database ping failed")
		return
	}

	writeSuccess(w, http.StatusOK, "Database is alive", keepAliveResponse{
		Timestamp: time.Now().UTC(),
		Latency:   time.Since(start).String(),
	})
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
