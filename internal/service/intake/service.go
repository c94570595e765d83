package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/metrics"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/pkg/ctxutil"
)

// submissionStore is the persistence contract of the pipeline.
type submissionStore interface {
	Insert(ctx context.Context, s *domain.Submission) (uuid.UUID, error)
	Count(ctx context.Context, q domain.Query) (int, error)
}

// txManager defines the transaction manager interface needed by the pipeline.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, job notify.Job) notify.Report
}

type jobQueue interface {
	Enqueue(job notify.Job) bool
}

type eventPublisher interface {
	PublishCreated(ctx context.Context, s *domain.Submission) error
}

type submissionObserver interface {
	ObserveSubmission(form, outcome string)
}

// Result is returned to the caller for a persisted submission.
type Result struct {
	ID                uuid.UUID
	Reference         string
	SubmittedAt       time.Time
	Position          *int
	EstimatedWaitTime string
}

// Service runs the intake pipeline: validate, guard, persist, notify.
type Service struct {
	log      *slog.Logger
	store    submissionStore
	tx       txManager
	guard    *Guard
	notifier dispatcher
	queue    jobQueue
	events   eventPublisher
	metrics  submissionObserver
	tracer   trace.Tracer

	notifyTimeout time.Duration
	eventTimeout  time.Duration
	now           func() time.Time
}

// defaultEventTimeout bounds the post-commit event publish.
const defaultEventTimeout = 2 * time.Second

// NewService creates the intake pipeline. events and m may be nil.
func NewService(
	logger *slog.Logger,
	store submissionStore,
	tx txManager,
	notifier dispatcher,
	queue jobQueue,
	events eventPublisher,
	m submissionObserver,
	notifyTimeout time.Duration,
) *Service {
	if m == nil {
		m = nopObserver{}
	}
	return &Service{
		log:           logger.With("service", "intake"),
		store:         store,
		tx:            tx,
		guard:         NewGuard(store),
		notifier:      notifier,
		queue:         queue,
		events:        events,
		metrics:       m,
		tracer:        otel.Tracer("github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/intake"),
		notifyTimeout: notifyTimeout,
		eventTimeout:  defaultEventTimeout,
		now:           time.Now,
	}
}

// Submit validates and persists f, then notifies. Only validation,
// duplicate and store errors are returned; everything after a successful
// insert is best effort.
func (s *Service) Submit(ctx context.Context, f Form) (*Result, error) {
	form := f.Type()
	ctx, span := s.tracer.Start(ctx, "intake.Submit", trace.WithAttributes(attribute.String("form", form.String())))
	defer span.End()

	now := s.now().UTC()
	log := s.log.With(slog.String("form", form.String()), slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)))

	if err := f.Validate(now); err != nil {
		s.metrics.ObserveSubmission(form.String(), metrics.OutcomeInvalid)
		span.SetAttributes(attribute.String("outcome", metrics.OutcomeInvalid))
		return nil, err
	}

	rec := f.Record()
	sub := &domain.Submission{
		Reference:   domain.GenerateReference(domain.ReferencePrefix(form), now),
		FormType:    form,
		Status:      rec.Status,
		SubjectName: rec.SubjectName,
		Phone:       optional(rec.Phone),
		Email:       optional(rec.Email),
		Payload:     rec.Fields,
		Source:      sourceFromCtx(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Check(ctx, f, now); err != nil {
			return err
		}
		if form == domain.FormWaitlist {
			active, err := s.store.Count(ctx, domain.Query{FormType: domain.FormWaitlist, Status: domain.StatusActive})
			if err != nil {
				return fmt.Errorf("count active waitlist: %w", err)
			}
			position := active + 1
			priority := domain.DefaultWaitlistPriority
			sub.Position = &position
			sub.Priority = &priority
		}

		id, err := s.store.Insert(ctx, sub)
		if err != nil {
			if reject := rejectionFor(f, now); reject != nil && errors.Is(err, domain.ErrAlreadyExists) {
				return reject
			}
			return fmt.Errorf("insert submission: %w", err)
		}
		sub.ID = id
		return nil
	})
	if err != nil {
		outcome := outcomeFor(err)
		s.metrics.ObserveSubmission(form.String(), outcome)
		span.SetAttributes(attribute.String("outcome", outcome))
		if outcome == metrics.OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission not persisted")
			log.ErrorContext(ctx, "submission failed", slog.String("error", err.Error()))
		} else {
			log.InfoContext(ctx, "submission rejected", slog.String("outcome", outcome))
		}
		return nil, err
	}

	s.metrics.ObserveSubmission(form.String(), metrics.OutcomeCreated)
	span.SetAttributes(attribute.String("outcome", metrics.OutcomeCreated), attribute.String("reference", sub.Reference))
	log.InfoContext(ctx, "submission stored", slog.String("reference", sub.Reference), slog.String("id", sub.ID.String()))

	s.publish(ctx, log, sub)
	s.notify(ctx, log, sub, rec.Content)

	res := &Result{
		ID:          sub.ID,
		Reference:   sub.Reference,
		SubmittedAt: sub.CreatedAt,
		Position:    sub.Position,
	}
	if sub.Position != nil {
		res.EstimatedWaitTime = domain.EstimateWait(*sub.Position)
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, sub *domain.Submission) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.eventTimeout)
	defer cancel()
	if err := s.events.PublishCreated(pctx, sub); err != nil {
		log.WarnContext(ctx, "submission event not published", slog.String("reference", sub.Reference), slog.String("error", err.Error()))
	}
}

// notify renders and sends inline for document forms and queues the rest.
func (s *Service) notify(ctx context.Context, log *slog.Logger, sub *domain.Submission, content notify.Content) {
	if sub.Position != nil {
		content.Fields = append(append([]domain.Field(nil), content.Fields...),
			domain.Field{Key: "position", Label: "Queue position", Value: strconv.Itoa(*sub.Position)},
			domain.Field{Key: "estimatedWaitTime", Label: "Estimated wait", Value: domain.EstimateWait(*sub.Position)},
		)
	}
	job := notify.Job{Submission: *sub, Content: content}

	if !domain.HasDocument(sub.FormType) {
		if !s.queue.Enqueue(job) {
			log.WarnContext(ctx, "notification not queued", slog.String("reference", sub.Reference))
		}
		return
	}

	ctx, span := s.tracer.Start(ctx, "intake.notify")
	defer span.End()

	nctx := context.WithoutCancel(ctx)
	if s.notifyTimeout > 0 {
		var cancel context.CancelFunc
		nctx, cancel = context.WithTimeout(nctx, s.notifyTimeout)
		defer cancel()
	}
	report := s.notifier.Dispatch(nctx, job)
	span.SetAttributes(
		attribute.Bool("rendered", report.Rendered),
		attribute.String("admin", report.Admin),
		attribute.String("submitter", report.Submitter),
	)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrRateLimited):
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeError
	}
}

// sourceFromCtx parses the client metadata stored by the transport layer.
func sourceFromCtx(ctx context.Context) domain.Source {
	raw := strings.TrimSpace(ctxutil.UserAgentFromCtx(ctx))
	src := domain.Source{UserAgent: raw, ClientIP: ctxutil.ClientIPFromCtx(ctx)}
	if raw == "" {
		src.UserAgent = domain.UnknownUserAgent
		return src
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()
	src.Browser = strings.TrimSpace(name + " " + version)
	src.OS = ua.OS()
	if ua.Bot() {
		src.Browser = "bot: " + src.Browser
	}
	return src
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(string, string) {}
