// Package subtrack собирает основное HTTP-приложение: хранилище, кеш,
// сервисы и маршруты.
package subtrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/subtrack-app/subtrack-backend/internal/cache"
	"github.com/subtrack-app/subtrack-backend/internal/config"
	"github.com/subtrack-app/subtrack-backend/internal/exchangerate"
	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
	"github.com/subtrack-app/subtrack-backend/internal/lib/jwt"
	"github.com/subtrack-app/subtrack-backend/internal/migrations"
	authservice "github.com/subtrack-app/subtrack-backend/internal/services/auth"
	catalogservice "github.com/subtrack-app/subtrack-backend/internal/services/catalog"
	currencyservice "github.com/subtrack-app/subtrack-backend/internal/services/currency"
	subservice "github.com/subtrack-app/subtrack-backend/internal/services/subscription"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
	"github.com/subtrack-app/subtrack-backend/internal/storage/repository"
)

// App — основное HTTP-приложение.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	currency *currencyservice.CurrencyService
	ratesTTL time.Duration
}

// New собирает приложение из конфигурации: подключает хранилище, применяет
// миграции, выбирает бэкенд кеша и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	appCache, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider := repository.NewProvider(db.DB, clock.System())
	subscriptions := repository.NewSubscriptions(provider)
	catalogs := repository.NewCatalogs(provider)
	users := repository.NewUsers(provider)

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	ratesClient := exchangerate.NewClient(cfg.RatesAPIURL, cfg.FetchTimeout)

	currencyService := currencyservice.NewCurrencyService(
		ratesClient, appCache, logger, cfg.ExchangeRates, cfg.RatesTTL)
	catalogService := catalogservice.NewCatalogService(catalogs, appCache, logger, cfg.CatalogTTL)
	subscriptionService := subservice.NewSubscriptionService(
		subscriptions, appCache, currencyService, clock.System(), logger, cfg.SubscriptionTTL)
	authService := authservice.NewAuthService(users, maker, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger,
		authService, subscriptionService, catalogService, currencyService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		currency: currencyService,
		ratesTTL: cfg.ExchangeRates.RefreshInterval,
	}, nil
}

// newCache выбирает бэкенд кеша по конфигурации.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.CacheDriver {
	case "memory", "":
		return cache.NewMemory(), nil
	case "redis":
		return cache.InitRedis(ctx, cfg.RedisConnection)
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.CacheDriver)
	}
}

// Run запускает HTTP-сервер и фоновое обновление курсов; завершает работу
// по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.currency.Run(ctx, a.ratesTTL)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
