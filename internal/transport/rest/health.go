package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"

	healthPingTimeout = 3 * time.Second
)

// storePinger checks that the submission store answers.
type storePinger interface {
	Ping(ctx context.Context) error
}

// queueStats reports the notification queue backlog.
type queueStats interface {
	Stats() notify.QueueStats
}

// HealthHandler reports whether submissions can be stored and whether their
// notifications can still be queued.
type HealthHandler struct {
	store   storePinger
	driver  string
	queue   queueStats
	version string
}

// NewHealthHandler creates a HealthHandler. driver names the submission
// store backend ("postgres" or "memory").
func NewHealthHandler(store storePinger, driver string, queue queueStats, version string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver, queue: queue, version: version}
}

// HealthResponse is the JSON body of /live, /ready and /health.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// ComponentStatus describes the submission store or the notification queue.
type ComponentStatus struct {
	Status   string `json:"status"`
	Driver   string `json:"driver,omitempty"`
	Latency  string `json:"latency,omitempty"`
	Depth    *int   `json:"depth,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

// Live always returns 200 while the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Ready returns 503 when the store does not answer or the notification
// queue is draining for shutdown.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	store := h.checkStore(r.Context())
	queue := h.checkQueue()

	status, code := statusOK, http.StatusOK
	if store.Status == statusDown || queue.Status == statusDown {
		status, code = statusDown, http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, Timestamp: time.Now()})
}

// Health reports every component. A full queue is degraded rather than
// down: submissions are still stored, only their notifications are lost.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]ComponentStatus{
		"submissions":   h.checkStore(r.Context()),
		"notifications": h.checkQueue(),
	}

	overall := statusOK
	for _, c := range components {
		switch {
		case c.Status == statusDown:
			overall = statusDown
		case c.Status == statusDegraded && overall == statusOK:
			overall = statusDegraded
		}
	}

	code := http.StatusOK
	if overall == statusDown {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) ComponentStatus {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		return ComponentStatus{Status: statusDown, Driver: h.driver}
	}
	return ComponentStatus{Status: statusOK, Driver: h.driver, Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkQueue() ComponentStatus {
	st := h.queue.Stats()
	c := ComponentStatus{Status: statusOK, Depth: &st.Depth, Capacity: st.Capacity}
	switch {
	case st.Closed:
		c.Status = statusDown
	case st.Capacity > 0 && st.Depth >= st.Capacity:
		c.Status = statusDegraded
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
