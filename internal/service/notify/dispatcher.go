// Package notify renders submission records and delivers admin and
// submitter notifications. Delivery is best effort: failures are logged
// and counted, never returned to the intake pipeline.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/metrics"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/provider"
)

type mailer interface {
	Send(ctx context.Context, msg provider.Email) error
}

type renderer interface {
	Render(ctx context.Context, doc domain.Document) ([]byte, error)
}

type archive interface {
	Put(ctx context.Context, reference string, pdf []byte) error
}

type linkSigner interface {
	URL(baseURL, reference string, form domain.FormType) (string, error)
}

type alerter interface {
	Notify(ctx context.Context, alert provider.Alert) error
}

type observer interface {
	ObserveNotification(audience, outcome string)
	ObserveRenderFailure(form string)
}

// Content is the form-specific copy that accompanies a notification.
type Content struct {
	// Fields is the ordered additional info shown in both emails.
	Fields []domain.Field
	// AdminAlert is an optional banner at the top of the staff email.
	AdminAlert string
	// NextSteps are bullets shown to the submitter.
	NextSteps []string
	// Reminder is an optional banner shown to the submitter.
	Reminder string
}

// Job is one unit of notification work for a persisted submission.
type Job struct {
	Submission domain.Submission
	Content    Content
}

// Report summarizes what Dispatch did.
type Report struct {
	Rendered  bool
	Archived  bool
	Admin     string
	Submitter string
}

// Settings holds addresses and retry policy.
type Settings struct {
	From         string
	AdminEmail   string
	HREmail      string
	SiteName     string
	SitePhone    string
	PublicURL    string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Deps are the collaborators of a Dispatcher. Mailer and Renderer are
// required; the rest are optional and skipped when nil.
type Deps struct {
	Mailer   mailer
	Renderer renderer
	Archive  archive
	Links    linkSigner
	Alerts   alerter
	Metrics  observer
}

// Dispatcher renders, archives and sends notifications for one job at a time.
type Dispatcher struct {
	log       *slog.Logger
	deps      Deps
	settings  Settings
	templates *templates
	loc       *time.Location
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewDispatcher parses the embedded templates and returns a Dispatcher.
func NewDispatcher(logger *slog.Logger, deps Deps, settings Settings) (*Dispatcher, error) {
	if deps.Mailer == nil || deps.Renderer == nil {
		return nil, errors.New("notify: mailer and renderer are required")
	}
	t, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 1
	}
	if deps.Metrics == nil {
		deps.Metrics = nopObserver{}
	}
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}

	return &Dispatcher{
		log:       logger.With("service", "notify"),
		deps:      deps,
		settings:  settings,
		templates: t,
		loc:       loc,
		sleep:     sleepCtx,
	}, nil
}

// Dispatch renders the document (for forms that have one), notifies the
// admin inbox and then the submitter. It never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) Report {
	sub := job.Submission
	log := d.log.With(slog.String("reference", sub.Reference), slog.String("form", sub.FormType.String()))
	report := Report{Admin: metrics.NotifySkipped, Submitter: metrics.NotifySkipped}

	var pdf []byte
	var documentURL string
	if domain.HasDocument(sub.FormType) {
		doc := domain.DocumentFor(&sub)
		var err error
		pdf, err = d.deps.Renderer.Render(ctx, doc)
		if err != nil {
			// No partial notifications without the record attached.
			log.ErrorContext(ctx, "document render failed, notifications aborted", slog.String("error", err.Error()))
			d.deps.Metrics.ObserveRenderFailure(sub.FormType.String())
			return report
		}
		report.Rendered = true
		report.Archived, documentURL = d.archive(ctx, log, sub, pdf)
	}

	data := d.viewModel(sub, job.Content, documentURL)

	adminMsg, err := d.compose(AudienceAdmin, d.adminRecipient(sub.FormType), data, pdf, domain.DocumentFor(&sub).AdminAttachmentName())
	if err != nil {
		log.ErrorContext(ctx, "compose admin message", slog.String("error", err.Error()))
		report.Admin = metrics.NotifyFailed
	} else {
		report.Admin = d.deliver(ctx, log, AudienceAdmin, adminMsg)
	}
	d.deps.Metrics.ObserveNotification(string(AudienceAdmin), report.Admin)

	d.alert(ctx, log, sub, job.Content, documentURL)

	if sub.Email == nil || *sub.Email == "" {
		log.InfoContext(ctx, "submitter notification skipped: no email collected")
		d.deps.Metrics.ObserveNotification(string(AudienceSubmitter), metrics.NotifySkipped)
		return report
	}

	data.DocumentURL = ""
	submitterMsg, err := d.compose(AudienceSubmitter, *sub.Email, data, pdf, domain.DocumentFor(&sub).SubmitterAttachmentName())
	if err != nil {
		log.ErrorContext(ctx, "compose submitter message", slog.String("error", err.Error()))
		report.Submitter = metrics.NotifyFailed
	} else {
		report.Submitter = d.deliver(ctx, log, AudienceSubmitter, submitterMsg)
	}
	d.deps.Metrics.ObserveNotification(string(AudienceSubmitter), report.Submitter)

	return report
}

func (d *Dispatcher) archive(ctx context.Context, log *slog.Logger, sub domain.Submission, pdf []byte) (bool, string) {
	if d.deps.Archive == nil {
		return false, ""
	}
	if err := d.deps.Archive.Put(ctx, sub.Reference, pdf); err != nil {
		log.WarnContext(ctx, "document archive failed", slog.String("error", err.Error()))
		return false, ""
	}
	if d.deps.Links == nil {
		return true, ""
	}
	link, err := d.deps.Links.URL(d.settings.PublicURL, sub.Reference, sub.FormType)
	if err != nil {
		log.WarnContext(ctx, "sign document link", slog.String("error", err.Error()))
		return true, ""
	}
	return true, link
}

func (d *Dispatcher) alert(ctx context.Context, log *slog.Logger, sub domain.Submission, c Content, link string) {
	if d.deps.Alerts == nil {
		return
	}
	a := provider.Alert{
		Title:     "New " + domain.FormTitle(sub.FormType) + " submission",
		Reference: sub.Reference,
		URL:       link,
		Fields:    [][2]string{{"Name", sub.SubjectName}},
	}
	if c.AdminAlert != "" {
		a.Fields = append(a.Fields, [2]string{"Alert", c.AdminAlert})
	}
	for _, f := range c.Fields {
		a.Fields = append(a.Fields, [2]string{f.Label, f.Value})
	}
	if err := d.deps.Alerts.Notify(ctx, a); err != nil {
		log.WarnContext(ctx, "chat alert failed", slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) viewModel(sub domain.Submission, c Content, documentURL string) messageData {
	fields := c.Fields
	if fields == nil {
		fields = sub.Payload
	}
	return messageData{
		SiteName:    d.settings.SiteName,
		SitePhone:   d.settings.SitePhone,
		FormTitle:   domain.FormTitle(sub.FormType),
		Reference:   sub.Reference,
		SubjectName: sub.SubjectName,
		SubmittedAt: sub.CreatedAt.In(d.loc).Format("2 January 2006 at 15:04"),
		Fields:      fields,
		Alert:       c.AdminAlert,
		NextSteps:   c.NextSteps,
		Reminder:    c.Reminder,
		DocumentURL: documentURL,
	}
}

func (d *Dispatcher) compose(a Audience, to string, data messageData, pdf []byte, attachmentName string) (provider.Email, error) {
	data.HasAttachment = len(pdf) > 0
	html, text, err := d.templates.render(a, data)
	if err != nil {
		return provider.Email{}, err
	}
	msg := provider.Email{
		From:     d.settings.From,
		To:       to,
		Subject:  subjectFor(a, data),
		HTMLBody: html,
		TextBody: text,
		Tag:      string(a),
	}
	if len(pdf) > 0 {
		msg.Attachments = []provider.Attachment{{Name: attachmentName, Content: pdf, ContentType: "application/pdf"}}
	}
	return msg, nil
}

// deliver sends msg with bounded retries and returns the metrics outcome.
func (d *Dispatcher) deliver(ctx context.Context, log *slog.Logger, a Audience, msg provider.Email) string {
	var err error
	for attempt := 1; attempt <= d.settings.MaxAttempts; attempt++ {
		if err = d.deps.Mailer.Send(ctx, msg); err == nil {
			log.InfoContext(ctx, "notification sent", slog.String("audience", string(a)), slog.Int("attempt", attempt))
			return metrics.NotifySent
		}
		if errors.Is(err, provider.ErrRejected) || attempt == d.settings.MaxAttempts {
			break
		}
		log.WarnContext(ctx, "notification retry",
			slog.String("audience", string(a)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if serr := d.sleep(ctx, d.settings.RetryBackoff*time.Duration(attempt)); serr != nil {
			err = fmt.Errorf("%w (retry aborted: %v)", err, serr)
			break
		}
	}
	log.ErrorContext(ctx, "notification failed", slog.String("audience", string(a)), slog.String("error", err.Error()))
	return metrics.NotifyFailed
}

func (d *Dispatcher) adminRecipient(f domain.FormType) string {
	if f == domain.FormJobApplication && d.settings.HREmail != "" {
		return d.settings.HREmail
	}
	return d.settings.AdminEmail
}

func sleepCtx(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopObserver struct{}

func (nopObserver) ObserveNotification(string, string) {}
func (nopObserver) ObserveRenderFailure(string)        {}
