// Package services содержит бизнес-логику работы с подписками пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/lib/billing"
	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
	"github.com/subtrack-app/subtrack-backend/internal/models"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
)

// dateLayout — формат дат контракта в запросах.
const dateLayout = "02-01-2006"

const subscriptionCacheKey = "subscription:%d"

// ErrInvalidBillingDay возвращается при дне списания вне диапазона 1..31.
var ErrInvalidBillingDay = errors.New("billing day must be between 1 and 31")

// ErrInvalidDate возвращается при неразбираемой дате контракта.
var ErrInvalidDate = errors.New("invalid date format, expected DD-MM-YYYY")

// SubscriptionRepository описывает методы хранилища подписок.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.UserSubscription) (int64, error)
	Update(ctx context.Context, sub *models.UserSubscription) error
	GetByID(ctx context.Context, id int64) (*models.UserSubscription, error)
	ListByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.UserSubscription, error)
	ListActiveByUser(ctx context.Context, userUID string) ([]*models.UserSubscription, error)
	Remove(ctx context.Context, id int64) error
}

// Cache описывает методы кеширования, нужные сервису.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Converter пересчитывает сумму в базовую валюту приложения.
type Converter interface {
	Convert(ctx context.Context, amount float64, currency string) float64
}

// SubscriptionService реализует операции над подписками пользователя.
type SubscriptionService struct {
	repo      SubscriptionRepository
	cache     Cache
	converter Converter
	clk       clock.Clock
	log       *slog.Logger
	cacheTTL  time.Duration
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, c Cache, converter Converter,
	clk clock.Clock, log *slog.Logger, cacheTTL time.Duration) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		cache:     c,
		converter: converter,
		clk:       clk,
		log:       log,
		cacheTTL:  cacheTTL,
	}
}

// Create сохраняет новую подписку пользователя и возвращает её ID.
func (s *SubscriptionService) Create(ctx context.Context, userUID string, req models.DummySubscription) (int64, error) {
	const op = "subscription.Create"

	sub, err := s.fromRequest(userUID, req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.Create(ctx, sub)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.storeCache(sub)
	return id, nil
}

// Read возвращает подписку пользователя по ID. Живой кеш — из кеша,
// промах — из хранилища с перезаписью кеша. Чужая подписка неотличима
// от отсутствующей.
func (s *SubscriptionService) Read(ctx context.Context, userUID string, id int64) (*models.UserSubscription, error) {
	const op = "subscription.Read"

	key := fmt.Sprintf(subscriptionCacheKey, id)
	var sub *models.UserSubscription
	found, err := s.cache.Get(key, &sub)
	if err != nil {
		s.log.Warn("failed to read subscription from cache", sl.Err(err))
	}
	if !found {
		sub, err = s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.storeCache(sub)
	}

	if sub.UserUID != userUID {
		return nil, storage.ErrNotFound
	}
	return sub, nil
}

// Update перезаписывает подписку пользователя данными запроса.
func (s *SubscriptionService) Update(ctx context.Context, userUID string, id int64, req models.DummySubscription) error {
	const op = "subscription.Update"

	current, err := s.Read(ctx, userUID, id)
	if err != nil {
		return err
	}

	sub, err := s.fromRequest(userUID, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sub.Entity = current.Entity
	sub.UsageHistory = current.UsageHistory

	if err := s.repo.Update(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.storeCache(sub)
	return nil
}

// Remove логически удаляет подписку пользователя.
func (s *SubscriptionService) Remove(ctx context.Context, userUID string, id int64) error {
	const op = "subscription.Remove"

	if _, err := s.Read(ctx, userUID, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(fmt.Sprintf(subscriptionCacheKey, id)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", sl.Err(err))
	}
	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает подписки пользователя с ближайшими датами списания.
func (s *SubscriptionService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.SubscriptionView, error) {
	const op = "subscription.List"

	subs, err := s.repo.ListByUser(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clk.Now()
	views := make([]*models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, &models.SubscriptionView{
			UserSubscription: sub,
			NextBillingDate:  billing.NextDate(now, sub.BillingDay),
		})
	}
	return views, nil
}

// ToggleActive переключает флаг активности подписки и возвращает новое значение.
func (s *SubscriptionService) ToggleActive(ctx context.Context, userUID string, id int64) (bool, error) {
	const op = "subscription.ToggleActive"

	sub, err := s.Read(ctx, userUID, id)
	if err != nil {
		return false, err
	}

	sub.IsActive = !sub.IsActive
	if err := s.repo.Update(ctx, sub); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.storeCache(sub)
	return sub.IsActive, nil
}

// MonthlySum возвращает сумму всех активных подписок пользователя,
// приведённую к базовой валюте.
func (s *SubscriptionService) MonthlySum(ctx context.Context, userUID string) (float64, error) {
	const op = "subscription.MonthlySum"

	subs, err := s.repo.ListActiveByUser(ctx, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var total float64
	for _, sub := range subs {
		total += s.converter.Convert(ctx, sub.Price, sub.Currency)
	}
	return total, nil
}

// fromRequest строит подписку из данных запроса.
func (s *SubscriptionService) fromRequest(userUID string, req models.DummySubscription) (*models.UserSubscription, error) {
	if req.BillingDay < 1 || req.BillingDay > 31 {
		return nil, ErrInvalidBillingDay
	}

	sub := &models.UserSubscription{
		UserUID:    userUID,
		CatalogID:  req.CatalogID,
		Name:       req.Name,
		Price:      req.Price,
		Currency:   req.Currency,
		BillingDay: req.BillingDay,
		Category:   req.Category,
		IsActive:   true,
		SharedWith: req.SharedWith,
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	var err error
	if sub.ContractStart, err = parseDate(req.ContractStart); err != nil {
		return nil, err
	}
	if sub.ContractEnd, err = parseDate(req.ContractEnd); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) storeCache(sub *models.UserSubscription) {
	key := fmt.Sprintf(subscriptionCacheKey, sub.ID)
	if err := s.cache.Set(key, sub, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", key), sl.Err(err))
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
