package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/transport/middleware"
)

// formRoutes maps URL slugs under /api/forms to form types.
var formRoutes = map[string]domain.FormType{
	"registration":      domain.FormRegistration,
	"medical":           domain.FormMedical,
	"consent":           domain.FormConsent,
	"funding":           domain.FormFunding,
	"change-of-details": domain.FormChangeOfDetails,
	"about-me":          domain.FormAboutMe,
	"job-application":   domain.FormJobApplication,
	"contact":           domain.FormContact,
	"availability":      domain.FormAvailability,
}

type limiter interface {
	Limit(maxPerMinute int) middleware.Middleware
}

type httpMetrics interface {
	ObserveHTTP(route, method string, status int, d time.Duration)
	Handler() http.Handler
}

// RouterDeps holds everything mounted on the public router. Documents,
// Limiter and Metrics are optional.
type RouterDeps struct {
	Forms     *FormHandler
	Waitlist  *WaitlistHandler
	Cron      *CronHandler
	Health    *HealthHandler
	Documents *DocumentHandler
	Limiter   limiter
	Metrics   httpMetrics

	CORS           config.CORSConfig
	FormsPerMinute int
}

// NewRouter builds the HTTP handler tree.
func NewRouter(deps RouterDeps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	stack := middleware.StackConfig{Logger: logger, CORS: deps.CORS}
	if deps.Metrics != nil {
		stack.Metrics = deps.Metrics
	}
	r.Use(middleware.Stack(stack)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/live", deps.Health.Live)
	r.Get("/ready", deps.Health.Ready)
	r.Get("/health", deps.Health.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if deps.Limiter != nil && deps.FormsPerMinute > 0 {
				r.Use(deps.Limiter.Limit(deps.FormsPerMinute))
			}
			for slug, t := range formRoutes {
				r.Post("/forms/"+slug, deps.Forms.Submit(t))
			}
			r.Post("/waitlist", deps.Forms.Submit(domain.FormWaitlist))
		})

		r.Get("/waitlist", deps.Waitlist.Status)
		r.Get("/cron/keep-alive", deps.Cron.KeepAlive)
		if deps.Documents != nil {
			r.Get("/documents/{reference}", deps.Documents.Download)
		}
	})

	return r
}
