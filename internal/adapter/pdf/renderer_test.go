package pdf

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer("Spring Lane Nursery", testLogger())
	out, err := r.Render(context.Background(), domain.Document{
		FormType:    domain.FormMedical,
		Reference:   "MED-ABC-123456",
		SubjectName: "Sam Doe",
		SubmittedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Fields: []domain.Field{
			{Key: "childName", Label: "Child's name", Value: "Sam Doe"},
			{Key: "allergies", Label: "Allergies", Value: "Peanuts – severe"},
			{Key: "conditions", Label: "Conditions", Value: strings.Repeat("Long text. ", 200)},
			{Key: "empty", Label: "Empty", Value: ""},
		},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(8, len(out))])
	}
}

func TestRenderer_RenderErrors(t *testing.T) {
	t.Parallel()
	r := NewRenderer("Spring Lane Nursery", testLogger())

	if _, err := r.Render(context.Background(), domain.Document{FormType: domain.FormConsent}); err == nil {
		t.Error("expected error for empty reference")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, domain.Document{FormType: domain.FormConsent, Reference: "CON-1"}); err == nil {
		t.Error("expected error for canceled context")
	}
}
