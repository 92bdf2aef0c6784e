// Package services содержит бизнес-логику работы с каталогом сервисов подписок.
//
// Каталог меняется редко, поэтому читается сквозь кеш с длинным TTL и
// повышенным приоритетом хранения. Ошибка хранилища никогда не кешируется.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/cache"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
	"github.com/subtrack-app/subtrack-backend/internal/models"
)

const (
	catalogAllKey   = "catalog:all"
	catalogByIDKey  = "catalog:%d"
	catalogPlansKey = "catalog:%d:plans"
)

// CatalogRepository описывает методы чтения каталога из хранилища.
type CatalogRepository interface {
	ListAll(ctx context.Context) ([]*models.Catalog, error)
	GetByID(ctx context.Context, id int64) (*models.Catalog, error)
	ListPlans(ctx context.Context, catalogID int64) ([]*models.Plan, error)
}

// Cache описывает методы кеширования, нужные сервису.
type Cache interface {
	Get(key string, result any) (bool, error)
	SetWithPriority(key string, value any, expiration time.Duration, priority cache.Priority) error
}

// CatalogService отдаёт справочник сервисов и их тарифов сквозь кеш.
type CatalogService struct {
	repo  CatalogRepository
	cache Cache
	log   *slog.Logger
	ttl   time.Duration
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, c Cache, log *slog.Logger, ttl time.Duration) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: c,
		log:   log,
		ttl:   ttl,
	}
}

// ListAll возвращает весь каталог. Промах кеша — чтение из хранилища и
// перезапись кеша; ошибка хранилища уходит наружу и в кеш не попадает.
func (s *CatalogService) ListAll(ctx context.Context) ([]*models.Catalog, error) {
	const op = "catalog.ListAll"

	var items []*models.Catalog
	found, err := s.cache.Get(catalogAllKey, &items)
	if err != nil {
		s.log.Warn("failed to read catalog from cache", sl.Err(err))
	}
	if found {
		return items, nil
	}

	items, err = s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.store(catalogAllKey, items)
	return items, nil
}

// GetByID возвращает позицию каталога вместе с тарифами.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (*models.Catalog, error) {
	const op = "catalog.GetByID"

	key := fmt.Sprintf(catalogByIDKey, id)
	var item *models.Catalog
	found, err := s.cache.Get(key, &item)
	if err != nil {
		s.log.Warn("failed to read catalog entry from cache", sl.Err(err))
	}
	if found {
		return item, nil
	}

	item, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.store(key, item)
	return item, nil
}

// ListPlans возвращает тарифы позиции каталога.
func (s *CatalogService) ListPlans(ctx context.Context, catalogID int64) ([]*models.Plan, error) {
	const op = "catalog.ListPlans"

	key := fmt.Sprintf(catalogPlansKey, catalogID)
	var plans []*models.Plan
	found, err := s.cache.Get(key, &plans)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return plans, nil
	}

	plans, err = s.repo.ListPlans(ctx, catalogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.store(key, plans)
	return plans, nil
}

func (s *CatalogService) store(key string, value any) {
	if err := s.cache.SetWithPriority(key, value, s.ttl, cache.PriorityHigh); err != nil {
		s.log.Warn("failed to cache catalog data", slog.String("key", key), sl.Err(err))
	}
}
