// Package review реализует HTTP-обработчики отзывов о курсах.
//
// Создавать отзыв может только студент, записанный на курс, и только один раз.
// Изменять и удалять отзыв может только его автор.
package review

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-marketplace/internal/http/request"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Handler обрабатывает запросы к отзывам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику отзывов.
type Service interface {
	Create(ctx context.Context, actor models.User, req models.ReviewCreateRequest) (*models.Review, error)
	Update(ctx context.Context, actor models.User, id int64, req models.ReviewUpdateRequest) (*models.Review, error)
	Delete(ctx context.Context, actor models.User, id int64) error
	Get(ctx context.Context, id int64) (*models.Review, error)
	ListByCourse(ctx context.Context, courseID int64, page models.PageRequest) (models.Page[models.Review], error)
	ListByStudent(ctx context.Context, actor models.User) ([]models.Review, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Create godoc
// @Summary Создание отзыва
// @Description Оценка от 1 до 5, комментарий до 500 символов. Студент должен быть записан на курс.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ReviewCreateRequest true "Отзыв"
// @Success 201 {object} response.Response{data=models.Review} "Отзыв создан"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 409 {object} response.ErrorResponse "Не записан на курс или отзыв уже оставлен"
// @Failure 422 {object} response.ErrorResponse "Некорректная оценка или комментарий"
// @Router /reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.review.Create")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.ReviewCreateRequest
	if err := request.DecodeJSON(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("review created", slog.Int64("review_id", res.ID), slog.Int64("course_id", res.CourseID))
	response.WriteOK(w, r, http.StatusCreated, res)
}

// Update godoc
// @Summary Изменение отзыва
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Param request body models.ReviewUpdateRequest true "Новая оценка и комментарий"
// @Success 200 {object} response.Response{data=models.Review} "Отзыв изменён"
// @Failure 403 {object} response.ErrorResponse "Отзыв другого студента"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректная оценка или комментарий"
// @Router /reviews/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.review.Update")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	id, err := request.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.ReviewUpdateRequest
	if err := request.DecodeJSON(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Delete godoc
// @Summary Удаление отзыва
// @Tags Reviews
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Success 200 {object} response.Response "Отзыв удалён"
// @Failure 403 {object} response.ErrorResponse "Отзыв другого студента"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Router /reviews/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.review.Delete")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	id, err := request.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("review deleted", slog.Int64("review_id", id))
	response.WriteOK(w, r, http.StatusOK, map[string]any{"deleted_id": id})
}

// Get godoc
// @Summary Отзыв по ID
// @Tags Reviews
// @Produce  json
// @Param id path int true "ID отзыва"
// @Success 200 {object} response.Response{data=models.Review} "Отзыв"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Router /reviews/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.review.Get")

	id, err := request.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// ListByCourse godoc
// @Summary Отзывы о курсе
// @Tags Reviews
// @Produce  json
// @Param courseId path int true "ID курса"
// @Param pageNo query int false "Номер страницы с нуля"
// @Param pageSize query int false "Размер страницы"
// @Param sortBy query string false "Поле сортировки"
// @Param sortDir query string false "Направление сортировки" Enums(asc, desc)
// @Success 200 {object} response.Response "Страница отзывов"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /reviews/course/{courseId} [get]
func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.review.ListByCourse")

	courseID, err := request.ID(r, "courseId")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	page, err := request.Page(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.ListByCourse(r.Context(), courseID, page)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Mine godoc
// @Summary Отзывы текущего студента
// @Tags Reviews
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Review} "Отзывы"
// @Failure 403 {object} response.ErrorResponse "Не студент"
// @Router /reviews/my-reviews [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.review.Mine")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.ListByStudent(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}
