// Package memory provides an in-process submission store for local
// development and tests. Contents are lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

// Store keeps submissions in insertion order.
type Store struct {
	mu   sync.RWMutex
	rows []domain.Submission

	// txMu serializes RunInTx callbacks so check-then-insert sequences
	// cannot interleave.
	txMu sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Insert stores a copy of s and returns its new ID.
func (s *Store) Insert(ctx context.Context, sub *domain.Submission) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].Reference == sub.Reference {
			return uuid.Nil, fmt.Errorf("submission %s: %w", sub.Reference, domain.ErrReferenceTaken)
		}
		if phoneOnce(sub.FormType) && s.rows[i].FormType == sub.FormType &&
			sub.Phone != nil && s.rows[i].Phone != nil && *s.rows[i].Phone == *sub.Phone {
			return uuid.Nil, fmt.Errorf("submission %s phone: %w", sub.FormType, domain.ErrAlreadyExists)
		}
	}

	row := clone(*sub)
	row.ID = uuid.New()
	if row.Source.UserAgent == "" {
		row.Source.UserAgent = domain.UnknownUserAgent
	}
	s.rows = append(s.rows, row)
	return row.ID, nil
}

// FindOne returns the oldest (or newest, per q.Newest) matching submission.
func (s *Store) FindOne(ctx context.Context, q domain.Query) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.filter(q)
	if len(matches) == 0 {
		return nil, fmt.Errorf("submission %s: %w", q.FormType, domain.ErrNotFound)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	found := matches[0]
	if q.Newest {
		found = matches[len(matches)-1]
	}
	out := clone(found)
	return &out, nil
}

// Count returns the number of matching submissions.
func (s *Store) Count(ctx context.Context, q domain.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(q)), nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// RunInTx runs fn while holding the store's transaction lock.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// SetStatus changes a submission's status. It exists for tests and
// development tooling; the intake pipeline never calls it.
func (s *Store) SetStatus(reference string, status domain.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].Reference == reference {
			s.rows[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("submission %s: %w", reference, domain.ErrNotFound)
}

func (s *Store) filter(q domain.Query) []domain.Submission {
	var out []domain.Submission
	for _, row := range s.rows {
		if matches(row, q) {
			out = append(out, row)
		}
	}
	return out
}

func matches(row domain.Submission, q domain.Query) bool {
	if q.FormType != "" && row.FormType != q.FormType {
		return false
	}
	if q.Phone != "" && (row.Phone == nil || *row.Phone != q.Phone) {
		return false
	}
	if q.Email != "" && (row.Email == nil || *row.Email != q.Email) {
		return false
	}
	if q.Status != "" && row.Status != q.Status {
		return false
	}
	if q.Reference != "" && row.Reference != q.Reference {
		return false
	}
	if !q.CreatedAfter.IsZero() && !row.CreatedAt.After(q.CreatedAfter) {
		return false
	}
	if !q.CreatedBefore.IsZero() && !row.CreatedAt.Before(q.CreatedBefore) {
		return false
	}
	for k, v := range q.PayloadEquals {
		if !hasField(row.Payload, k, v) {
			return false
		}
	}
	return true
}

func hasField(fields []domain.Field, key, value string) bool {
	for _, f := range fields {
		if f.Key == key && f.Value == value {
			return true
		}
	}
	return false
}

// phoneOnce mirrors the partial unique index on (form_type, phone).
func phoneOnce(f domain.FormType) bool {
	return f == domain.FormWaitlist || f == domain.FormAvailability
}

func clone(s domain.Submission) domain.Submission {
	s.Payload = append([]domain.Field(nil), s.Payload...)
	if s.Phone != nil {
		v := *s.Phone
		s.Phone = &v
	}
	if s.Email != nil {
		v := *s.Email
		s.Email = &v
	}
	if s.Priority != nil {
		v := *s.Priority
		s.Priority = &v
	}
	if s.Position != nil {
		v := *s.Position
		s.Position = &v
	}
	return s
}
