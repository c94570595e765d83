// Package submission persists form submissions in PostgreSQL.
// The contract is insert / find-one / count; updates belong to back-office tooling.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	postgres "github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/postgres"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

const (
	table               = "submissions"
	referenceConstraint = "submissions_reference_key"
)

var columns = []string{
	"id", "reference", "form_type", "status", "subject_name", "phone", "email",
	"payload", "priority", "position", "user_agent", "browser", "os", "client_ip",
	"created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides submission persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Source
}

// New creates a new submission repository.
func New(db postgres.Source) *Repo {
	return &Repo{db: db}
}

// row is the scan target for a submissions row.
type row struct {
	ID          uuid.UUID `db:"id"`
	Reference   string    `db:"reference"`
	FormType    string    `db:"form_type"`
	Status      string    `db:"status"`
	SubjectName string    `db:"subject_name"`
	Phone       *string   `db:"phone"`
	Email       *string   `db:"email"`
	Payload     []byte    `db:"payload"`
	Priority    *string   `db:"priority"`
	Position    *int32    `db:"position"`
	UserAgent   string    `db:"user_agent"`
	Browser     *string   `db:"browser"`
	OS          *string   `db:"os"`
	ClientIP    *string   `db:"client_ip"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Insert stores s and returns the database-assigned ID. A phone collision on
// a once-only form maps to domain.ErrAlreadyExists and a reference collision
// to domain.ErrReferenceTaken.
func (r *Repo) Insert(ctx context.Context, s *domain.Submission) (uuid.UUID, error) {
	q, err := r.db.Querier(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	var position *int32
	if s.Position != nil {
		p := int32(*s.Position)
		position = &p
	}

	userAgent := s.Source.UserAgent
	if userAgent == "" {
		userAgent = domain.UnknownUserAgent
	}

	query, args, err := psql.Insert(table).
		Columns(
			"reference", "form_type", "status", "subject_name", "phone", "email",
			"payload", "priority", "position", "user_agent", "browser", "os", "client_ip",
			"created_at", "updated_at",
		).
		Values(
			s.Reference, string(s.FormType), string(s.Status), s.SubjectName, s.Phone, s.Email,
			payload, s.Priority, position, userAgent, nilIfEmpty(s.Source.Browser), nilIfEmpty(s.Source.OS),
			nilIfEmpty(s.Source.ClientIP), s.CreatedAt, s.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("build insert: %w", err)
	}

	var id uuid.UUID
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == referenceConstraint {
			return uuid.Nil, fmt.Errorf("submission %s: %w", s.Reference, domain.ErrReferenceTaken)
		}
		return uuid.Nil, postgres.MapError(err, "submission", s.Reference)
	}
	return id, nil
}

// FindOne returns the first submission matching q ordered by created_at
// (newest first when q.Newest). Returns domain.ErrNotFound when nothing matches.
func (r *Repo) FindOne(ctx context.Context, q domain.Query) (*domain.Submission, error) {
	querier, err := r.db.Querier(ctx)
	if err != nil {
		return nil, err
	}

	order := "created_at ASC, id ASC"
	if q.Newest {
		order = "created_at DESC, id DESC"
	}

	b, err := where(psql.Select(columns...).From(table), q)
	if err != nil {
		return nil, err
	}
	query, args, err := b.OrderBy(order).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, querier, &rw, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("submission %s: %w", describe(q), domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "submission", describe(q))
	}

	return toDomain(rw)
}

// Count returns how many submissions match q.
func (r *Repo) Count(ctx context.Context, q domain.Query) (int, error) {
	querier, err := r.db.Querier(ctx)
	if err != nil {
		return 0, err
	}

	b, err := where(psql.Select("count(*)").From(table), q)
	if err != nil {
		return 0, err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := querier.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "submission", describe(q))
	}
	return int(n), nil
}

// where translates a domain.Query into WHERE clauses. Zero fields are skipped.
func where(b sq.SelectBuilder, q domain.Query) (sq.SelectBuilder, error) {
	if q.FormType != "" {
		b = b.Where(sq.Eq{"form_type": string(q.FormType)})
	}
	if q.Reference != "" {
		b = b.Where(sq.Eq{"reference": q.Reference})
	}
	if q.Phone != "" {
		b = b.Where(sq.Eq{"phone": q.Phone})
	}
	if q.Email != "" {
		b = b.Where(sq.Eq{"email": q.Email})
	}
	if q.Status != "" {
		b = b.Where(sq.Eq{"status": string(q.Status)})
	}
	if !q.CreatedAfter.IsZero() {
		b = b.Where(sq.Gt{"created_at": q.CreatedAfter})
	}
	if !q.CreatedBefore.IsZero() {
		b = b.Where(sq.Lt{"created_at": q.CreatedBefore})
	}
	if len(q.PayloadEquals) > 0 {
		keys := make([]string, 0, len(q.PayloadEquals))
		for k := range q.PayloadEquals {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		// payload is an array of {key,label,value}; containment matches on key and value only.
		contains := make([]map[string]string, len(keys))
		for i, k := range keys {
			contains[i] = map[string]string{"key": k, "value": q.PayloadEquals[k]}
		}
		js, err := json.Marshal(contains)
		if err != nil {
			return b, fmt.Errorf("marshal payload filter: %w", err)
		}
		b = b.Where("payload @> ?::jsonb", string(js))
	}
	return b, nil
}

func toDomain(rw row) (*domain.Submission, error) {
	s := &domain.Submission{
		ID:          rw.ID,
		Reference:   rw.Reference,
		FormType:    domain.FormType(rw.FormType),
		Status:      domain.SubmissionStatus(rw.Status),
		SubjectName: rw.SubjectName,
		Phone:       rw.Phone,
		Email:       rw.Email,
		Priority:    rw.Priority,
		Source: domain.Source{
			UserAgent: rw.UserAgent,
			Browser:   deref(rw.Browser),
			OS:        deref(rw.OS),
			ClientIP:  deref(rw.ClientIP),
		},
		CreatedAt: rw.CreatedAt,
		UpdatedAt: rw.UpdatedAt,
	}
	if rw.Position != nil {
		p := int(*rw.Position)
		s.Position = &p
	}
	if len(rw.Payload) > 0 {
		if err := json.Unmarshal(rw.Payload, &s.Payload); err != nil {
			return nil, fmt.Errorf("submission %s: decode payload: %w", rw.Reference, err)
		}
	}
	return s, nil
}

// describe renders the identifying part of a query for error messages.
func describe(q domain.Query) string {
	switch {
	case q.Reference != "":
		return q.Reference
	case q.Phone != "":
		return string(q.FormType) + "/phone"
	case q.Email != "":
		return string(q.FormType) + "/email"
	default:
		return string(q.FormType)
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
