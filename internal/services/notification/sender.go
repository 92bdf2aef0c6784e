package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
	"github.com/subtrack-app/subtrack-backend/internal/metrics"
	"github.com/subtrack-app/subtrack-backend/internal/models"
)

// routingKeyBillingUpcoming — ключ маршрутизации push-уведомлений о списаниях.
const routingKeyBillingUpcoming = "billing.upcoming"

// QueueSource описывает выборку и маркировку уведомлений очереди.
type QueueSource interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]*models.NotificationQueue, error)
	MarkSent(ctx context.Context, n *models.NotificationQueue, at time.Time) error
	MarkFailed(ctx context.Context, n *models.NotificationQueue, deliveryErr string) error
}

// Broker публикует сообщение в exchange уведомлений.
type Broker interface {
	Publish(routingKey string, message any) error
}

// PushMessage — полезная нагрузка сообщения брокеру.
type PushMessage struct {
	NotificationID int64  `json:"notification_id"`
	UserUID        string `json:"user_uid"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

// SenderService забирает созревшие уведомления из очереди и публикует их
// в брокер. Неудачная публикация помечается ошибкой и строка остаётся
// в очереди до следующего прохода.
type SenderService struct {
	queue      QueueSource
	broker     Broker
	clk        clock.Clock
	log        *slog.Logger
	batchLimit int
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(queue QueueSource, broker Broker, clk clock.Clock, log *slog.Logger, batchLimit int) *SenderService {
	return &SenderService{
		queue:      queue,
		broker:     broker,
		clk:        clk,
		log:        log,
		batchLimit: batchLimit,
	}
}

// ProcessDue публикует пачку созревших уведомлений и возвращает количество
// успешно отправленных.
func (s *SenderService) ProcessDue(ctx context.Context) (int, error) {
	const op = "notification.ProcessDue"

	now := s.clk.Now()
	due, err := s.queue.FindDue(ctx, now, s.batchLimit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	sent := 0
	for _, n := range due {
		msg := PushMessage{
			NotificationID: n.ID,
			UserUID:        n.UserUID,
			Title:          n.Title,
			Message:        n.Message,
		}
		if err := s.broker.Publish(routingKeyBillingUpcoming, msg); err != nil {
			s.log.Error("failed to publish notification",
				slog.Int64("notification_id", n.ID), sl.Err(err))
			if err := s.queue.MarkFailed(ctx, n, err.Error()); err != nil {
				s.log.Error("failed to mark notification as failed", sl.Err(err))
			}
			continue
		}
		if err := s.queue.MarkSent(ctx, n, now); err != nil {
			s.log.Error("failed to mark notification as sent",
				slog.Int64("notification_id", n.ID), sl.Err(err))
			continue
		}
		sent++
	}
	metrics.NotificationsSent.Add(float64(sent))
	return sent, nil
}

// Run обрабатывает очередь сразу и далее по тикеру до отмены контекста.
func (s *SenderService) Run(ctx context.Context, interval time.Duration) {
	s.runProcess(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runProcess(ctx)
		}
	}
}

func (s *SenderService) runProcess(ctx context.Context) {
	sent, err := s.ProcessDue(ctx)
	if err != nil {
		s.log.Error("failed to process notification queue", sl.Err(err))
		return
	}
	if sent > 0 {
		s.log.Info("notifications published", slog.Int("sent", sent))
	}
}
