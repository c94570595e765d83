package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewLogger_SetsDefault(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})

	if slog.Default().Handler() != logger.Handler() {
		t.Error("NewLogger should install the returned logger as slog default")
	}
}

func TestNewLogger_TagsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "info", Format: "json"})

	logger.Info("submission accepted", slog.String("reference", "CNT-ABC-123456"))

	m := decodeRecord(t, &buf)
	if m["service"] != serviceName {
		t.Errorf("service = %v, want %q", m["service"], serviceName)
	}
	if v, _ := m["version"].(string); !strings.HasPrefix(v, Version) {
		t.Errorf("version = %v, want prefix %q", m["version"], Version)
	}
	if m["reference"] != "CNT-ABC-123456" {
		t.Errorf("reference = %v", m["reference"])
	}
	if _, ok := m["source"]; ok {
		t.Error("json format should not include source")
	}
}

func TestNewLogger_TextAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "info", Format: "text"})

	logger.Info("hello")

	if !strings.Contains(buf.String(), "source=") {
		t.Errorf("text format should include source, got %q", buf.String())
	}
}

func TestNewLogger_MasksContactDetails(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "info", Format: "json"})

	logger.Info("email sent",
		slog.String("to", "jane.parent@example.com"),
		slog.String("phone", "+447712345678"),
		slog.String("form_type", "waitlist"),
	)

	m := decodeRecord(t, &buf)
	if m["to"] != "j***@example.com" {
		t.Errorf("to = %v, want masked address", m["to"])
	}
	if m["phone"] != "***678" {
		t.Errorf("phone = %v, want masked number", m["phone"])
	}
	if m["form_type"] != "waitlist" {
		t.Errorf("form_type = %v, should be untouched", m["form_type"])
	}
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"office@springlane.test": "o***@springlane.test",
		"not-an-address":         "***",
		"@springlane.test":       "***",
		"":                       "***",
	}
	for in, want := range tests {
		if got := maskEmail(in); got != want {
			t.Errorf("maskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level    string
		wantSlog slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, config.LogConfig{Level: tt.level, Format: "text"})

			logger.Log(context.TODO(), tt.wantSlog, "should appear")
			if buf.Len() == 0 {
				t.Errorf("expected log output at level %v", tt.wantSlog)
			}

			buf.Reset()
			logger.Log(context.TODO(), tt.wantSlog-1, "should be suppressed")
			if buf.Len() != 0 {
				t.Errorf("level %v should suppress level %v, got %s", tt.wantSlog, tt.wantSlog-1, buf.String())
			}
		})
	}
}

func TestBuildVersion_FallsBackToVCSStamp(t *testing.T) {
	origInfo, origCommit, origBuilt := buildInfo, Commit, BuildTime
	t.Cleanup(func() { buildInfo, Commit, BuildTime = origInfo, origCommit, origBuilt })

	Commit, BuildTime = "unknown", "unknown"
	buildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T08:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		}}, true
	}

	want := Version + " (commit: 0123456789ab-dirty, built: 2026-10-01T08:00:00Z)"
	if got := BuildVersion(); got != want {
		t.Errorf("BuildVersion() = %q, want %q", got, want)
	}

	Commit, BuildTime = "f00dfeed", "2026-10-02"
	want = Version + " (commit: f00dfeed, built: 2026-10-02)"
	if got := BuildVersion(); got != want {
		t.Errorf("BuildVersion() with ldflags = %q, want %q", got, want)
	}
}

func TestBuildVersion_NoBuildInfo(t *testing.T) {
	origInfo, origCommit, origBuilt := buildInfo, Commit, BuildTime
	t.Cleanup(func() { buildInfo, Commit, BuildTime = origInfo, origCommit, origBuilt })

	Commit, BuildTime = "unknown", "unknown"
	buildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

	want := Version + " (commit: unknown, built: unknown)"
	if got := BuildVersion(); got != want {
		t.Errorf("BuildVersion() = %q, want %q", got, want)
	}
}
