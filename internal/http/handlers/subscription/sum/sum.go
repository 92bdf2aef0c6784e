// Package sum реализует HTTP-обработчик подсчёта месячной суммы подписок.
//
// Сумма считается по активным подпискам пользователя с приведением цен
// к базовой валюте по текущим курсам.
package sum

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subtrack-app/subtrack-backend/internal/http/middlewarectx"
	"github.com/subtrack-app/subtrack-backend/internal/http/response"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
)

// Handler обрабатывает запросы подсчёта месячной суммы.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подписок
}

// Service описывает интерфейс подсчёта месячной суммы.
type Service interface {
	MonthlySum(ctx context.Context, userUID string) (float64, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Месячная сумма подписок
// @Description Возвращает сумму активных подписок пользователя в базовой валюте.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Сумма подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/sum [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.sum"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := middlewarectx.UserUID(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	total, err := h.service.MonthlySum(r.Context(), uid)
	if err != nil {
		log.Error("failed to count monthly sum", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count monthly sum"))
		return
	}

	log.Info("monthly sum counted", slog.Float64("total", total))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"total": total,
	}))
}
