// Package services содержит бизнес-логику работы с курсами валют.
//
// Курсы читаются сквозь кеш с коротким TTL; при недоступности внешнего
// источника отдаётся фиксированная таблица по умолчанию — отображение сумм
// всегда получает число и никогда не получает ошибку.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/cache"
	"github.com/subtrack-app/subtrack-backend/internal/config"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
	"github.com/subtrack-app/subtrack-backend/internal/metrics"
)

// ratesCacheKey — единственный разделяемый ключ курсов: имя операции без
// аргументов, пользовательских параметров у запроса курсов нет.
const ratesCacheKey = "currency:rates"

// TrackedCurrencies — валюты, которые запрашиваются у источника.
var TrackedCurrencies = []string{"USD", "EUR", "GBP"}

// DefaultRates возвращает фиксированную таблицу курсов к базовой валюте
// на случай недоступности источника.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"USD": 34.50,
		"EUR": 37.20,
		"GBP": 43.10,
	}
}

// RateSource описывает внешний источник курсов валют.
type RateSource interface {
	FetchRates(ctx context.Context, base string, symbols []string) (map[string]float64, error)
}

// Cache описывает методы кеширования, нужные сервису.
type Cache interface {
	Get(key string, result any) (bool, error)
	SetWithPriority(key string, value any, expiration time.Duration, priority cache.Priority) error
}

// CurrencyService отдаёт курсы валют сквозь кеш и обновляет их по расписанию.
type CurrencyService struct {
	source       RateSource
	cache        Cache
	log          *slog.Logger
	base         string
	ttl          time.Duration
	fetchTimeout time.Duration
}

// NewCurrencyService создает новый экземпляр CurrencyService.
func NewCurrencyService(source RateSource, c Cache, log *slog.Logger, cfg config.ExchangeRates, ttl time.Duration) *CurrencyService {
	return &CurrencyService{
		source:       source,
		cache:        c,
		log:          log,
		base:         cfg.BaseCurrency,
		ttl:          ttl,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// GetRates возвращает текущие курсы. Живой кеш — из кеша; промах — синхронная
// попытка обновления; неудачное обновление — таблица по умолчанию.
// Ошибки наружу не выходят.
func (s *CurrencyService) GetRates(ctx context.Context) map[string]float64 {
	var rates map[string]float64
	found, err := s.cache.Get(ratesCacheKey, &rates)
	if err != nil {
		s.log.Warn("failed to read rates from cache", sl.Err(err))
	}
	if found {
		return rates
	}

	rates, err = s.refresh(ctx)
	if err != nil {
		s.log.Warn("rate source unavailable, serving default rates", sl.Err(err))
		return DefaultRates()
	}
	return rates
}

// UpdateRates принудительно обновляет курсы у источника и перезаписывает
// кеш с новым окном TTL.
func (s *CurrencyService) UpdateRates(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

// Convert пересчитывает сумму из валюты currency в базовую валюту.
// Неизвестная валюта возвращается как есть.
func (s *CurrencyService) Convert(ctx context.Context, amount float64, currency string) float64 {
	if currency == "" || currency == s.base {
		return amount
	}
	rate, ok := s.GetRates(ctx)[currency]
	if !ok {
		s.log.Warn("unknown currency, amount left unconverted", slog.String("currency", currency))
		return amount
	}
	return amount * rate
}

// Run обновляет курсы сразу и далее по тикеру до отмены контекста.
func (s *CurrencyService) Run(ctx context.Context, interval time.Duration) {
	s.runUpdate(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runUpdate(ctx)
		}
	}
}

func (s *CurrencyService) runUpdate(ctx context.Context) {
	s.log.Info("starting exchange rate refresh")
	if err := s.UpdateRates(ctx); err != nil {
		s.log.Error("failed to refresh exchange rates", sl.Err(err))
		return
	}
	s.log.Info("exchange rates refreshed")
}

// refresh опрашивает источник с таймаутом; неудачный вызов не кешируется.
func (s *CurrencyService) refresh(ctx context.Context) (map[string]float64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	rates, err := s.source.FetchRates(fetchCtx, s.base, TrackedCurrencies)
	if err != nil {
		metrics.RateRefreshFailures.Inc()
		return nil, err
	}
	if err := s.cache.SetWithPriority(ratesCacheKey, rates, s.ttl, cache.PriorityHigh); err != nil {
		s.log.Warn("failed to cache rates", slog.String("key", ratesCacheKey), sl.Err(err))
	}
	return rates, nil
}
