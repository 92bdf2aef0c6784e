package subtrack

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/auth/login"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/auth/register"
	cataloglist "github.com/subtrack-app/subtrack-backend/internal/http/handlers/catalog/list"
	catalogread "github.com/subtrack-app/subtrack-backend/internal/http/handlers/catalog/read"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/currency/rates"
	deviceregister "github.com/subtrack-app/subtrack-backend/internal/http/handlers/device/register"
	deviceunregister "github.com/subtrack-app/subtrack-backend/internal/http/handlers/device/unregister"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/health"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/create"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/list"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/read"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/remove"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/sum"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/toggle"
	"github.com/subtrack-app/subtrack-backend/internal/http/handlers/subscription/update"
	"github.com/subtrack-app/subtrack-backend/internal/http/middlewarectx"
	authservice "github.com/subtrack-app/subtrack-backend/internal/services/auth"
	catalogservice "github.com/subtrack-app/subtrack-backend/internal/services/catalog"
	currencyservice "github.com/subtrack-app/subtrack-backend/internal/services/currency"
	subservice "github.com/subtrack-app/subtrack-backend/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	subscriptionService *subservice.SubscriptionService,
	catalogService *catalogservice.CatalogService,
	currencyService *currencyservice.CurrencyService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Get("/catalog", cataloglist.New(logger, catalogService).ServeHTTP)
		r.Get("/catalog/{id}", catalogread.New(logger, catalogService).ServeHTTP)
		r.Get("/currency/rates", rates.New(logger, currencyService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, 10, 20))
			r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/sum", sum.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, subscriptionService).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/{id}/toggle", toggle.New(logger, subscriptionService).ServeHTTP)
			r.Post("/devices", deviceregister.New(logger, authService).ServeHTTP)
			r.Delete("/devices", deviceunregister.New(logger, authService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
