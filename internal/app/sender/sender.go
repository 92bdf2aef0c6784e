// Package sender собирает приложение воркера доставки уведомлений.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/subtrack-app/subtrack-backend/internal/config"
	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
	"github.com/subtrack-app/subtrack-backend/internal/rabbitmq"
	notificationservice "github.com/subtrack-app/subtrack-backend/internal/services/notification"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
	"github.com/subtrack-app/subtrack-backend/internal/storage/repository"
)

// App — приложение воркера доставки уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *notificationservice.SenderService
	db            *storage.Storage
	cfg           *config.Config
	logger        *slog.Logger
}

// New создает новый экземпляр приложения воркера доставки.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		_ = db.DB.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.DefaultQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.DB.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	provider := repository.NewProvider(db.DB, clock.System())
	notifications := repository.NewNotifications(provider)

	senderService := notificationservice.NewSenderService(
		notifications, rabbitmq.NewClient(ch), clock.System(), logger, cfg.SenderBatchLimit)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		db:            db,
		cfg:           cfg,
		logger:        logger,
	}, nil
}

// Run запускает воркер до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.senderService.Run(ctx, a.cfg.SenderInterval)

	a.logger.Info("shutting down sender service")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return a.db.DB.Close()
}
