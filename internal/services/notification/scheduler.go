// Package services содержит планировщик и воркер доставки уведомлений
// о предстоящих списаниях.
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

// notificationTitle — заголовок push-уведомления о списании.
const notificationTitle = "Скоро списание по подписке"

// SubscriptionSource описывает выборку подписок для планировщика.
type SubscriptionSource interface {
	FindActiveByBillingDay(ctx context.Context, day int) ([]*models.UserSubscription, error)
}

// QueueSink описывает постановку уведомлений в очередь.
type QueueSink interface {
	EnqueueMany(ctx context.Context, rows []*models.NotificationQueue) error
}

// SchedulerService находит подписки с приближающимся списанием и ставит
// уведомления в очередь доставки.
type SchedulerService struct {
	subs  SubscriptionSource
	queue QueueSink
	clk   clock.Clock
	log   *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(subs SubscriptionSource, queue QueueSink, clk clock.Clock, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		subs:  subs,
		queue: queue,
		clk:   clk,
		log:   log,
	}
}

// CheckAndQueueUpcomingPayments ставит в очередь уведомления по активным
// подпискам, у которых день списания наступает через daysBefore дней.
// Все строки одного запуска ложатся одним коммитом; пустая выборка — штатный
// no-op. Возвращает количество поставленных уведомлений.
//
// Результат — чистая функция часов и данных: повторный запуск без
// изменений данных даёт тот же набор кандидатов.
func (s *SchedulerService) CheckAndQueueUpcomingPayments(ctx context.Context, daysBefore int) (int, error) {
	const op = "notification.CheckAndQueueUpcomingPayments"

	now := s.clk.Now()
	targetDay := now.AddDate(0, 0, daysBefore).Day()

	subs, err := s.subs.FindActiveByBillingDay(ctx, targetDay)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(subs) == 0 {
		return 0, nil
	}

	rows := make([]*models.NotificationQueue, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, &models.NotificationQueue{
			UserUID:        sub.UserUID,
			SubscriptionID: sub.ID,
			Title:          notificationTitle,
			Message: fmt.Sprintf("%s: списание через %d дн. Сумма: %.2f %s",
				sub.Name, daysBefore, sub.Price, sub.Currency),
			ScheduledDate: now,
		})
	}

	if err := s.queue.EnqueueMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	metrics.NotificationsQueued.Add(float64(len(rows)))
	return len(rows), nil
}

// Run выполняет проверку сразу и далее по тикеру до отмены контекста.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration, daysBefore int) {
	s.runCheck(ctx, daysBefore)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCheck(ctx, daysBefore)
		}
	}
}

func (s *SchedulerService) runCheck(ctx context.Context, daysBefore int) {
	s.log.Info("starting upcoming payments check", slog.Int("days_before", daysBefore))
	queued, err := s.CheckAndQueueUpcomingPayments(ctx, daysBefore)
	if err != nil {
		s.log.Error("failed to queue upcoming payments", sl.Err(err))
		return
	}
	s.log.Info("upcoming payments check finished", slog.Int("queued", queued))
}
