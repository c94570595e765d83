// Package waitlist answers position lookups for families on the waiting list.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

type submissionReader interface {
	FindOne(ctx context.Context, q domain.Query) (*domain.Submission, error)
	Count(ctx context.Context, q domain.Query) (int, error)
}

// Status is the current queue state of one waitlist entry.
type Status struct {
	Reference         string
	Position          int
	EstimatedWaitTime string
	JoinedAt          time.Time
	Status            domain.SubmissionStatus
}

// Service implements the waitlist status read path.
type Service struct {
	store submissionReader
	log   *slog.Logger
}

// NewService creates a waitlist Service.
func NewService(logger *slog.Logger, store submissionReader) *Service {
	return &Service{store: store, log: logger.With("service", "waitlist")}
}

// Status looks up the active entry for phone and computes its live position
// among active entries. The position stored at join time is ignored.
func (s *Service) Status(ctx context.Context, phone string) (*Status, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, domain.NewValidationError("phone", "Phone number is required")
	}
	normalized, ok := domain.NormalizePhone(phone, domain.PhoneLoose)
	if !ok {
		return nil, domain.NewValidationError("phone", "Please enter a valid phone number")
	}

	entry, err := s.store.FindOne(ctx, domain.Query{
		FormType: domain.FormWaitlist,
		Phone:    normalized,
		Status:   domain.StatusActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("waitlist entry: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find waitlist entry: %w", err)
	}

	ahead, err := s.store.Count(ctx, domain.Query{
		FormType:      domain.FormWaitlist,
		Status:        domain.StatusActive,
		CreatedBefore: entry.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("count waitlist ahead: %w", err)
	}

	position := ahead + 1
	s.log.DebugContext(ctx, "waitlist status", slog.String("reference", entry.Reference), slog.Int("position", position))

	return &Status{
		Reference:         entry.Reference,
		Position:          position,
		EstimatedWaitTime: domain.EstimateWait(position),
		JoinedAt:          entry.CreatedAt,
		Status:            entry.Status,
	}, nil
}
