// Package list реализует HTTP-обработчик получения справочника сервисов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subtrack-app/subtrack-backend/internal/http/response"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
	"github.com/subtrack-app/subtrack-backend/internal/models"
)

// Handler обрабатывает запросы на получение каталога.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	ListAll(ctx context.Context) ([]*models.Catalog, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Справочник сервисов подписок
// @Description Возвращает каталог известных сервисов с категориями и логотипами.
// @Tags Catalog
// @Produce  json
// @Success 200 {object} map[string]any "Справочник сервисов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /catalog [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list catalog", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list catalog"))
		return
	}

	log.Info("catalog listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"catalog": items,
		"count":   len(items),
	}))
}
