// Package scheduler собирает приложение планировщика уведомлений.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/config"
	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
	"github.com/subtrack-app/subtrack-backend/internal/migrations"
	notificationservice "github.com/subtrack-app/subtrack-backend/internal/services/notification"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
	"github.com/subtrack-app/subtrack-backend/internal/storage/repository"
)

// App — приложение планировщика уведомлений.
type App struct {
	schedulerService *notificationservice.SchedulerService
	db               *storage.Storage
	cfg              *config.Config
	logger           *slog.Logger
}

func waitForDB(db *storage.Storage) error {
	for range 10 {
		if err := storage.CheckDatabaseReady(db); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.DB.Close()
		return nil, err
	}
	if err := waitForDB(db); err != nil {
		_ = db.DB.Close()
		return nil, err
	}

	provider := repository.NewProvider(db.DB, clock.System())
	subscriptions := repository.NewSubscriptions(provider)
	notifications := repository.NewNotifications(provider)

	schedulerService := notificationservice.NewSchedulerService(
		subscriptions, notifications, clock.System(), logger)

	return &App{
		schedulerService: schedulerService,
		db:               db,
		cfg:              cfg,
		logger:           logger,
	}, nil
}

// Run запускает планировщик до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx, a.cfg.SchedulerInterval, a.cfg.DaysBefore)

	a.logger.Info("shutting down scheduler service")
	return a.db.DB.Close()
}
