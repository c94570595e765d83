package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func (f *fakeProducer) Close() { f.closed = true }

func newTestPublisher(fp *fakeProducer) *Publisher {
	return &Publisher{client: fp, topic: "nursery.submissions", log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestPublisher_PublishCreated(t *testing.T) {
	t.Parallel()

	fp := &fakeProducer{}
	p := newTestPublisher(fp)
	pos := 3
	s := &domain.Submission{
		ID:        uuid.New(),
		Reference: "WL-ABC-123456",
		FormType:  domain.FormWaitlist,
		Status:    domain.StatusActive,
		Position:  &pos,
		Payload:   []domain.Field{{Key: "phone", Value: "07712345678"}},
		CreatedAt: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	if err := p.PublishCreated(context.Background(), s); err != nil {
		t.Fatalf("PublishCreated: %v", err)
	}
	if len(fp.records) != 1 {
		t.Fatalf("records = %d, want 1", len(fp.records))
	}
	rec := fp.records[0]
	if string(rec.Key) != "WL-ABC-123456" || rec.Topic != "nursery.submissions" {
		t.Errorf("record key/topic = %s/%s", rec.Key, rec.Topic)
	}

	var ev Event
	if err := json.Unmarshal(rec.Value, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != EventSubmissionCreated || ev.Position == nil || *ev.Position != 3 || ev.FormType != "waitlist" {
		t.Errorf("event = %+v", ev)
	}
	if hasPayload(rec.Value) {
		t.Error("event must not carry payload values")
	}

	p.Close()
	if !fp.closed {
		t.Error("Close did not close the client")
	}
}

func hasPayload(b []byte) bool {
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	_, ok := m["payload"]
	return ok
}

func TestPublisher_PublishCreated_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker unavailable")
	p := newTestPublisher(&fakeProducer{err: boom})
	err := p.PublishCreated(context.Background(), &domain.Submission{Reference: "CNT-1", FormType: domain.FormContact})
	if !errors.Is(err, boom) {
		t.Fatalf("PublishCreated error = %v, want %v", err, boom)
	}
}
