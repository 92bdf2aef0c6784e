// Package read реализует HTTP-обработчик получения позиции каталога по ID
// вместе с её тарифами.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subtrack-app/subtrack-backend/internal/http/response"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
	"github.com/subtrack-app/subtrack-backend/internal/models"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
)

// Handler обрабатывает запросы на получение позиции каталога.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс чтения позиции каталога.
type Service interface {
	GetByID(ctx context.Context, id int64) (*models.Catalog, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Позиция каталога по ID
// @Description Возвращает сервис из справочника вместе с его тарифами.
// @Tags Catalog
// @Produce  json
// @Param id path int true "ID позиции каталога"
// @Success 200 {object} map[string]any "Позиция каталога"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Позиция не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /catalog/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("catalog entry not found"))
			return
		}
		log.Error("failed to read catalog entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read catalog entry"))
		return
	}

	log.Info("catalog entry read", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"catalog_entry": item,
	}))
}
