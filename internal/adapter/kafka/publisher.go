// Package kafka publishes submission events for back-office consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

// EventSubmissionCreated is the type header value of every event.
const EventSubmissionCreated = "submission.created"

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher writes one record per persisted submission, keyed by reference.
type Publisher struct {
	client producer
	topic  string
	log    *slog.Logger
}

// NewPublisher creates a franz-go client for the given brokers.
// Connections are established lazily on first produce. A record that is not
// acknowledged within deliveryTimeout fails instead of being retried forever.
func NewPublisher(brokers []string, topic string, deliveryTimeout time.Duration, logger *slog.Logger) (*Publisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(0),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if deliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(deliveryTimeout), kgo.ProduceRequestTimeout(deliveryTimeout))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	return &Publisher{client: client, topic: topic, log: logger.With("adapter", "kafka")}, nil
}

// Event is the JSON value of a submission.created record. The payload is
// deliberately omitted; consumers look the submission up by reference.
type Event struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	FormType  string    `json:"formType"`
	Status    string    `json:"status"`
	Position  *int      `json:"position,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublishCreated sends the event and waits for the broker acknowledgement.
func (p *Publisher) PublishCreated(ctx context.Context, s *domain.Submission) error {
	rec, err := p.record(s)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", s.Reference, err)
	}
	p.log.DebugContext(ctx, "event published", slog.String("reference", s.Reference), slog.String("topic", p.topic))
	return nil
}

// Close releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}

func (p *Publisher) record(s *domain.Submission) (*kgo.Record, error) {
	value, err := json.Marshal(Event{
		Type:      EventSubmissionCreated,
		ID:        s.ID.String(),
		Reference: s.Reference,
		FormType:  s.FormType.String(),
		Status:    s.Status.String(),
		Position:  s.Position,
		CreatedAt: s.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("kafka: encode event: %w", err)
	}
	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(s.Reference),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(EventSubmissionCreated)},
			{Key: "form", Value: []byte(s.FormType)},
		},
	}, nil
}
