package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/models"
)

var notificationMapper = Mapper[*models.NotificationQueue]{
	Table: "notification_queue",
	Columns: []string{"user_uid", "subscription_id", "title", "message",
		"scheduled_date", "is_sent", "sent_date", "error_message"},
	Values: func(n *models.NotificationQueue) []any {
		return []any{n.UserUID, n.SubscriptionID, n.Title, n.Message,
			n.ScheduledDate, n.IsSent, n.SentDate, n.ErrorMessage}
	},
	Scan: func(row RowScanner) (*models.NotificationQueue, error) {
		var n models.NotificationQueue
		var updated, sentDate sql.NullTime
		var errMsg sql.NullString
		if err := row.Scan(&n.ID, &n.UserUID, &n.SubscriptionID, &n.Title,
			&n.Message, &n.ScheduledDate, &n.IsSent, &sentDate, &errMsg,
			&n.CreatedAt, &updated, &n.IsDeleted); err != nil {
			return nil, err
		}
		if updated.Valid {
			n.UpdatedAt = &updated.Time
		}
		if sentDate.Valid {
			n.SentDate = &sentDate.Time
		}
		if errMsg.Valid {
			n.ErrorMessage = &errMsg.String
		}
		return &n, nil
	},
}

// Notifications — доступ к очереди уведомлений. Строки создаёт планировщик,
// забирает и помечает воркер доставки.
type Notifications struct {
	p *Provider
}

// NewNotifications создаёт репозиторий очереди уведомлений.
func NewNotifications(p *Provider) *Notifications {
	return &Notifications{p: p}
}

// EnqueueMany сохраняет пачку уведомлений одним коммитом: либо ложатся
// все строки запуска планировщика, либо ни одной.
func (r *Notifications) EnqueueMany(ctx context.Context, rows []*models.NotificationQueue) error {
	uow := r.p.NewUnitOfWork()
	NewStore(uow, notificationMapper).AddMany(rows)
	return uow.Commit(ctx)
}

// FindDue возвращает неотправленные уведомления, срок которых наступил.
func (r *Notifications) FindDue(ctx context.Context, now time.Time, limit int) ([]*models.NotificationQueue, error) {
	st := NewStore(r.p.NewUnitOfWork(), notificationMapper)
	return st.Find(ctx, Cond{
		Where:   "is_sent = FALSE AND scheduled_date <= $1",
		Args:    []any{now},
		OrderBy: "scheduled_date",
		Limit:   limit,
	}, false)
}

// FindBySubscription возвращает уведомления по подписке; includeDeleted
// пробрасывается до стора.
func (r *Notifications) FindBySubscription(ctx context.Context, subscriptionID int64, includeDeleted bool) ([]*models.NotificationQueue, error) {
	st := NewStore(r.p.NewUnitOfWork(), notificationMapper)
	return st.Find(ctx, Cond{
		Where: "subscription_id = $1",
		Args:  []any{subscriptionID},
	}, includeDeleted)
}

// MarkSent помечает уведомление доставленным.
func (r *Notifications) MarkSent(ctx context.Context, n *models.NotificationQueue, at time.Time) error {
	n.IsSent = true
	t := at
	n.SentDate = &t
	n.ErrorMessage = nil

	uow := r.p.NewUnitOfWork()
	NewStore(uow, notificationMapper).Update(n)
	return uow.Commit(ctx)
}

// MarkFailed записывает ошибку доставки; уведомление остаётся неотправленным
// и будет подобрано следующим проходом воркера.
func (r *Notifications) MarkFailed(ctx context.Context, n *models.NotificationQueue, deliveryErr string) error {
	n.ErrorMessage = &deliveryErr

	uow := r.p.NewUnitOfWork()
	NewStore(uow, notificationMapper).Update(n)
	return uow.Commit(ctx)
}
