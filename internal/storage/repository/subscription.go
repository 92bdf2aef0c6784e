package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/subtrack-app/subtrack-backend/internal/models"
)

// mustJSON сериализует значение для jsonb-колонки; nil означает SQL NULL.
func mustJSON(v any) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

var subscriptionMapper = Mapper[*models.UserSubscription]{
	Table: "user_subscriptions",
	Columns: []string{"user_uid", "catalog_id", "name", "price", "currency",
		"billing_day", "category", "is_active", "contract_start", "contract_end",
		"shared_with", "usage_history"},
	Values: func(s *models.UserSubscription) []any {
		var shared []byte
		if s.SharedWith != nil {
			shared = mustJSON(s.SharedWith)
		}
		var usage []byte
		if len(s.UsageHistory) > 0 {
			usage = []byte(s.UsageHistory)
		}
		return []any{s.UserUID, s.CatalogID, s.Name, s.Price, s.Currency,
			s.BillingDay, s.Category, s.IsActive, s.ContractStart, s.ContractEnd,
			shared, usage}
	},
	Scan: func(row RowScanner) (*models.UserSubscription, error) {
		var s models.UserSubscription
		var updated, contractStart, contractEnd sql.NullTime
		var catalogID sql.NullInt64
		var shared, usage []byte
		if err := row.Scan(&s.ID, &s.UserUID, &catalogID, &s.Name, &s.Price,
			&s.Currency, &s.BillingDay, &s.Category, &s.IsActive,
			&contractStart, &contractEnd, &shared, &usage,
			&s.CreatedAt, &updated, &s.IsDeleted); err != nil {
			return nil, err
		}
		if updated.Valid {
			s.UpdatedAt = &updated.Time
		}
		if contractStart.Valid {
			s.ContractStart = &contractStart.Time
		}
		if contractEnd.Valid {
			s.ContractEnd = &contractEnd.Time
		}
		if catalogID.Valid {
			s.CatalogID = &catalogID.Int64
		}
		if len(shared) > 0 {
			if err := json.Unmarshal(shared, &s.SharedWith); err != nil {
				return nil, err
			}
		}
		if len(usage) > 0 {
			s.UsageHistory = json.RawMessage(usage)
		}
		return &s, nil
	},
}

// Subscriptions — доступ к подпискам пользователей. Каждый метод работает
// в собственном unit of work: стейджит изменения и фиксирует их одним Commit.
type Subscriptions struct {
	p *Provider
}

// NewSubscriptions создаёт репозиторий подписок.
func NewSubscriptions(p *Provider) *Subscriptions {
	return &Subscriptions{p: p}
}

// Create сохраняет новую подписку и возвращает её ID.
func (r *Subscriptions) Create(ctx context.Context, sub *models.UserSubscription) (int64, error) {
	uow := r.p.NewUnitOfWork()
	NewStore(uow, subscriptionMapper).Add(sub)
	if err := uow.Commit(ctx); err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// Update сохраняет изменения подписки.
func (r *Subscriptions) Update(ctx context.Context, sub *models.UserSubscription) error {
	uow := r.p.NewUnitOfWork()
	NewStore(uow, subscriptionMapper).Update(sub)
	return uow.Commit(ctx)
}

// GetByID возвращает подписку по ID; отсутствующая или логически удалённая —
// storage.ErrNotFound.
func (r *Subscriptions) GetByID(ctx context.Context, id int64) (*models.UserSubscription, error) {
	st := NewStore(r.p.NewUnitOfWork(), subscriptionMapper)
	return st.GetByID(ctx, id)
}

// ListByUser возвращает подписки пользователя с пагинацией.
func (r *Subscriptions) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.UserSubscription, error) {
	st := NewStore(r.p.NewUnitOfWork(), subscriptionMapper)
	return st.Find(ctx, Cond{
		Where:   "user_uid = $1",
		Args:    []any{userUID},
		OrderBy: "id",
		Limit:   limit,
		Offset:  offset,
	}, false)
}

// ListActiveByUser возвращает активные подписки пользователя без пагинации,
// используется для подсчёта месячной суммы.
func (r *Subscriptions) ListActiveByUser(ctx context.Context, userUID string) ([]*models.UserSubscription, error) {
	st := NewStore(r.p.NewUnitOfWork(), subscriptionMapper)
	return st.Find(ctx, Cond{
		Where: "user_uid = $1 AND is_active = TRUE",
		Args:  []any{userUID},
	}, false)
}

// FindActiveByBillingDay возвращает активные неудалённые подписки с заданным
// днём списания. Используется планировщиком уведомлений.
func (r *Subscriptions) FindActiveByBillingDay(ctx context.Context, day int) ([]*models.UserSubscription, error) {
	st := NewStore(r.p.NewUnitOfWork(), subscriptionMapper)
	return st.Find(ctx, Cond{
		Where: "is_active = TRUE AND billing_day = $1",
		Args:  []any{day},
	}, false)
}

// Remove логически удаляет подписку вместе с её неотправленными уведомлениями.
// Многошаговая операция идёт в явной транзакции unit of work: либо удаляется
// и подписка, и хвост очереди, либо ничего.
func (r *Subscriptions) Remove(ctx context.Context, id int64) error {
	const op = "repository.Subscriptions.Remove"

	uow := r.p.NewUnitOfWork()
	subStore := NewStore(uow, subscriptionMapper)
	queueStore := NewStore(uow, notificationMapper)

	if err := uow.BeginTransaction(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sub, err := subStore.GetByID(ctx, id)
	if err != nil {
		_ = uow.RollbackTransaction()
		return err
	}
	subStore.Remove(sub)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.RollbackTransaction()
		return fmt.Errorf("%s: %w", op, err)
	}

	pending, err := queueStore.Find(ctx, Cond{
		Where: "subscription_id = $1 AND is_sent = FALSE",
		Args:  []any{id},
	}, false)
	if err != nil {
		_ = uow.RollbackTransaction()
		return fmt.Errorf("%s: %w", op, err)
	}
	queueStore.RemoveMany(pending)
	if err := uow.Commit(ctx); err != nil {
		_ = uow.RollbackTransaction()
		return fmt.Errorf("%s: %w", op, err)
	}

	return uow.CommitTransaction()
}
