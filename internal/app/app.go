package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/kafka"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/memory"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/objectstore"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/pdf"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/postgres"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/postgres/submission"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/provider/discord"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/provider/postmark"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/redis"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/auth"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/metrics"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/intake"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/waitlist"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/transport/middleware"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/transport/rest"
)

// submissionStore is what the services need from a storage backend.
type submissionStore interface {
	Insert(ctx context.Context, s *domain.Submission) (uuid.UUID, error)
	FindOne(ctx context.Context, q domain.Query) (*domain.Submission, error)
	Count(ctx context.Context, q domain.Query) (int, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// storage bundles one backend's handles.
type storage struct {
	submissions submissionStore
	tx          txRunner
	db          pinger
	close       func()
}

// Run is the application entry point. It loads configuration, wires the
// intake pipeline and serves HTTP until ctx is canceled, then shuts down
// the server and drains the notification queue.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("log_level", cfg.Log.Level),
		slog.String("store", cfg.Database.Driver),
	)

	store, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.close()

	m := metrics.New()

	archive, links, err := newArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	dispatcher, err := newDispatcher(cfg, archive, links, m, logger)
	if err != nil {
		return err
	}
	queue := notify.NewQueue(logger, dispatcher, cfg.Notifications.Workers, cfg.Notifications.QueueSize,
		cfg.Notifications.JobTimeout, m)

	var events interface {
		PublishCreated(ctx context.Context, s *domain.Submission) error
	}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		publisher, err := kafka.NewPublisher(brokers, cfg.Kafka.Topic, cfg.Kafka.Timeout, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher
	}

	intakeSvc := intake.NewService(logger, store.submissions, store.tx, dispatcher, queue, events, m,
		cfg.Notifications.JobTimeout)
	waitlistSvc := waitlist.NewService(logger, store.submissions)

	deps := rest.RouterDeps{
		Forms:          rest.NewFormHandler(intakeSvc, cfg.Server.MaxBodyBytes, logger),
		Waitlist:       rest.NewWaitlistHandler(waitlistSvc, logger),
		Cron:           rest.NewCronHandler(store.db, cfg.Security.CronSecret, logger),
		Health:         rest.NewHealthHandler(store.db, cfg.Database.Driver, queue, BuildVersion()),
		Metrics:        m,
		CORS:           cfg.CORS,
		FormsPerMinute: cfg.RateLimit.FormsPerMinute,
	}

	if archive != nil && links != nil {
		deps.Documents = rest.NewDocumentHandler(links, archive, logger)
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		deps.Limiter = middleware.NewRedisRateLimiter(redisClient, "ratelimit:forms", logger)
	} else {
		rl := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer rl.Stop()
		deps.Limiter = rl
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      rest.NewRouter(deps, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.String("error", err.Error()))
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification queue drain", slog.String("error", err.Error()))
	}
	logger.Info("stopped")
	return nil
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*storage, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory submission store; submissions are lost on restart")
		st := memory.New()
		return &storage{submissions: st, tx: st, db: st, close: func() {}}, nil
	}

	if cfg.MigrateOnStart {
		mctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout+time.Minute)
		defer cancel()
		if err := postgres.Migrate(mctx, cfg.DSN, logger); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool := postgres.NewLazyPool(cfg)
	return &storage{
		submissions: submission.New(pool),
		tx:          postgres.NewTxManager(pool),
		db:          pool,
		close:       pool.Close,
	}, nil
}

// newArchive returns nil handles when archiving is off. Links are only
// issued for archived documents.
func newArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*objectstore.Archive, *auth.LinkManager, error) {
	if !cfg.Archive.Enabled() {
		return nil, nil, nil
	}
	archive, err := objectstore.NewArchive(cfg.Archive, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		logger.Warn("document archive bucket check failed", slog.String("error", err.Error()))
	}
	if cfg.Security.LinkSecret == "" {
		return archive, nil, nil
	}
	links, err := auth.NewLinkManager(cfg.Security.LinkSecret, cfg.Site.PublicURL, cfg.Archive.LinkTTL)
	if err != nil {
		return nil, nil, err
	}
	return archive, links, nil
}

func newDispatcher(
	cfg *config.Config,
	archive *objectstore.Archive,
	links *auth.LinkManager,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*notify.Dispatcher, error) {
	deps := notify.Deps{
		Renderer: pdf.NewRenderer(cfg.Site.Name, logger),
		Metrics:  m,
	}

	if cfg.Mail.Enabled && cfg.Mail.ServerToken != "" {
		deps.Mailer = postmark.NewClientWithURL(cfg.Mail.APIURL, cfg.Mail.ServerToken, cfg.Mail.Timeout, logger)
	} else {
		logger.Warn("email delivery disabled; notifications are logged only")
		deps.Mailer = notify.NewLogMailer(logger)
	}
	if archive != nil {
		deps.Archive = archive
	}
	if links != nil {
		deps.Links = links
	}

	if cfg.Discord.Enabled() {
		alerts, err := discord.NewNotifier(cfg.Discord.WebhookID, cfg.Discord.WebhookToken, logger)
		if err != nil {
			return nil, err
		}
		deps.Alerts = alerts
	}

	return notify.NewDispatcher(logger, deps, notify.Settings{
		From:         cfg.Mail.From,
		AdminEmail:   cfg.Mail.AdminEmail,
		HREmail:      cfg.Mail.HREmail,
		SiteName:     cfg.Site.Name,
		SitePhone:    cfg.Site.Phone,
		PublicURL:    cfg.Site.PublicURL,
		MaxAttempts:  cfg.Notifications.MaxAttempts,
		RetryBackoff: cfg.Notifications.RetryBackoff,
	})
}
