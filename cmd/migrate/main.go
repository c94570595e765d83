// Command migrate applies pending database migrations and exits. It is meant
// for deploy pipelines that run with DATABASE_MIGRATE_ON_START=false.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/postgres"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/app"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
		logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("migrations up to date")
}
