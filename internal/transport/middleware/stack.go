package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
)

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

// StackConfig configures the pipeline in front of every public route.
// Metrics is optional.
type StackConfig struct {
	Logger  *slog.Logger
	CORS    config.CORSConfig
	Metrics httpObserver
}

// Stack returns the public request pipeline, outermost first. The request ID
// and client metadata are in the context before the access log runs, and a
// panic recovered below it is logged and counted as a 500.
func Stack(cfg StackConfig) chi.Middlewares {
	stack := chi.Middlewares{
		RequestID(),
		ClientMetadata(),
		Logger(cfg.Logger),
	}
	if cfg.Metrics != nil {
		stack = append(stack, Metrics(cfg.Metrics))
	}
	return append(stack, Recovery(cfg.Logger), CORS(cfg.CORS))
}
