package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
)

const serviceName = "spring-lane-nursery"

// NewLogger builds the process logger from LogConfig, tags every record with
// the service name and build version, and installs it as slog's default.
// Parent contact details that reach log attributes are masked.
//
// Format "json" is for production; "text" adds source locations for local work.
// Level is debug, info, warn or error (case-insensitive) and defaults to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   strings.EqualFold(cfg.Format, "text"),
		ReplaceAttr: maskContact,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", serviceName), versionAttr())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// maskContact hides email recipients and phone numbers in log output.
func maskContact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	switch a.Key {
	case "to", "email", "recipient":
		return slog.String(a.Key, maskEmail(a.Value.String()))
	case "phone", "phone_number":
		return slog.String(a.Key, maskPhone(a.Value.String()))
	}
	return a
}

func maskEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}

func maskPhone(phone string) string {
	if len(phone) <= 3 {
		return "***"
	}
	return "***" + phone[len(phone)-3:]
}
