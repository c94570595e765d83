package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/provider"
)

func TestNotifier_Notify(t *testing.T) {
	t.Parallel()

	var got *discordgo.WebhookParams
	n := &Notifier{
		execute: func(p *discordgo.WebhookParams) error { got = p; return nil },
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := n.Notify(context.Background(), provider.Alert{
		Title:     "New Waitlist submission",
		Reference: "WL-ABC-123456",
		Fields:    [][2]string{{"Name", "Jane Doe"}, {"Notes", ""}},
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got == nil || len(got.Embeds) != 1 {
		t.Fatalf("params = %+v", got)
	}
	e := got.Embeds[0]
	if e.Title != "New Waitlist submission" || e.Footer.Text != "WL-ABC-123456" {
		t.Errorf("embed = %+v", e)
	}
	if len(e.Fields) != 2 || e.Fields[1].Value != "-" {
		t.Errorf("fields = %+v", e.Fields)
	}
}

func TestNotifier_NotifyError(t *testing.T) {
	t.Parallel()

	boom := errors.New("HTTP 404 Not Found")
	n := &Notifier{
		execute: func(*discordgo.WebhookParams) error { return boom },
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := n.Notify(context.Background(), provider.Alert{Title: "x"}); !errors.Is(err, boom) {
		t.Fatalf("Notify error = %v, want %v", err, boom)
	}
}

func TestToEmbed_Limits(t *testing.T) {
	t.Parallel()

	fields := make([][2]string, 30)
	for i := range fields {
		fields[i] = [2]string{"f", strings.Repeat("x", 2000)}
	}
	e := toEmbed(provider.Alert{Fields: fields}, time.Now())
	if len(e.Fields) != maxEmbedFields {
		t.Errorf("fields = %d, want %d", len(e.Fields), maxEmbedFields)
	}
	if len(e.Fields[0].Value) != maxFieldValue {
		t.Errorf("value length = %d, want %d", len(e.Fields[0].Value), maxFieldValue)
	}
}
