// Package rates реализует HTTP-обработчик получения курсов валют.
//
// Обработчик никогда не отвечает ошибкой: при недоступности источника
// сервис отдаёт фиксированную таблицу по умолчанию.
package rates

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subtrack-app/subtrack-backend/internal/http/response"
)

// Handler обрабатывает запросы на получение курсов валют.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики курсов валют
}

// Service описывает интерфейс бизнес-логики курсов валют.
type Service interface {
	GetRates(ctx context.Context) map[string]float64
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Курсы валют
// @Description Возвращает текущие курсы отслеживаемых валют к базовой валюте.
// @Tags Currency
// @Produce  json
// @Success 200 {object} map[string]any "Курсы валют"
// @Router /currency/rates [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.currency.rates"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rates := h.service.GetRates(r.Context())

	log.Info("rates served", slog.Int("count", len(rates)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"rates": rates,
	}))
}
