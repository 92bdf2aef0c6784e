// Package register реализует HTTP-обработчик регистрации push-токена устройства.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/subtrack-app/subtrack-backend/internal/http/middlewarectx"
	"github.com/subtrack-app/subtrack-backend/internal/http/response"
	"github.com/subtrack-app/subtrack-backend/internal/lib/sl"
)

// Request — структура входных данных регистрации токена устройства.
type Request struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android"`
}

// Handler обрабатывает регистрацию push-токенов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики устройств
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс регистрации устройства.
type Service interface {
	RegisterDevice(ctx context.Context, userUID, token, platform string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать push-токен устройства
// @Description Сохраняет push-токен текущего пользователя для доставки уведомлений.
// @Tags Devices
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен и платформа устройства"
// @Success 200 {object} map[string]any "Токен сохранен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /devices [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, ok := middlewarectx.UserUID(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.RegisterDevice(r.Context(), uid, req.Token, req.Platform); err != nil {
		log.Error("failed to register device token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register device token"))
		return
	}

	log.Info("device token registered", slog.String("platform", req.Platform))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"registered": true,
	}))
}
