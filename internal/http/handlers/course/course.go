// Package course реализует HTTP-обработчики каталога курсов: просмотр,
// создание и изменение курсов преподавателем.
package course

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-marketplace/internal/http/request"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Handler обрабатывает запросы к каталогу курсов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику каталога.
type Service interface {
	Create(ctx context.Context, actor models.User, req models.CourseRequest) (*models.Course, error)
	Get(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter, page models.PageRequest) (models.Page[models.Course], error)
	ListMine(ctx context.Context, actor models.User) ([]models.Course, error)
	Update(ctx context.Context, actor models.User, id int64, req models.CourseRequest) (*models.Course, error)
	Patch(ctx context.Context, actor models.User, id int64, patch models.CoursePatch) (*models.Course, error)
	Delete(ctx context.Context, actor models.User, id int64) error
}

// New создает Handler с переданным логгером и сервисом.
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

// List godoc
// @Summary Каталог курсов
// @Description Постраничный список курсов с поиском по названию и фильтром по уровню.
// @Tags Courses
// @Produce  json
// @Param name query string false "Подстрока названия"
// @Param level query string false "Уровень" Enums(BEGINNER, INTERMEDIATE, ADVANCED)
// @Param pageNo query int false "Номер страницы с нуля"
// @Param pageSize query int false "Размер страницы"
// @Param sortBy query string false "Поле сортировки"
// @Param sortDir query string false "Направление сортировки" Enums(asc, desc)
// @Success 200 {object} response.Response "Страница курсов"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 422 {object} response.ErrorResponse "Неизвестный уровень или поле сортировки"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.List")

	page, err := request.Page(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	filter := models.CourseFilter{
		Name:  strings.TrimSpace(r.URL.Query().Get("name")),
		Level: models.Level(strings.ToUpper(r.URL.Query().Get("level"))),
	}

	res, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Get godoc
// @Summary Курс по ID
// @Tags Courses
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response{data=models.Course} "Курс"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Get")

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

// Create godoc
// @Summary Создание курса
// @Description Создаёт курс от имени текущего преподавателя.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CourseRequest true "Данные курса"
// @Success 201 {object} response.Response{data=models.Course} "Курс создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Не преподаватель"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /courses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Create")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.CourseRequest
	if err := request.DecodeJSON(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("course created", slog.Int64("course_id", res.ID))
	response.WriteOK(w, r, http.StatusCreated, res)
}

// MyCourses godoc
// @Summary Курсы текущего преподавателя
// @Tags Courses
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Course} "Курсы"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Не преподаватель"
// @Router /courses/my-courses [get]
func (h *Handler) MyCourses(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.MyCourses")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Update godoc
// @Summary Полное обновление курса
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Param request body models.CourseRequest true "Новые данные курса"
// @Success 200 {object} response.Response{data=models.Course} "Курс обновлён"
// @Failure 403 {object} response.ErrorResponse "Курс принадлежит другому преподавателю"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /courses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Update")

	actor, id, err := h.target(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.CourseRequest
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

// Patch godoc
// @Summary Частичное обновление курса
// @Description Меняет только переданные поля.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Param request body models.CoursePatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Course} "Курс обновлён"
// @Failure 403 {object} response.ErrorResponse "Курс принадлежит другому преподавателю"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /courses/{id} [patch]
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Patch")

	actor, id, err := h.target(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var patch models.CoursePatch
	if err := request.DecodeJSON(r, h.validate, &patch); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Patch(r.Context(), actor, id, patch)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Delete godoc
// @Summary Удаление курса
// @Description Удаляет курс вместе с записями студентов и отзывами.
// @Tags Courses
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response "Курс удалён"
// @Failure 403 {object} response.ErrorResponse "Курс принадлежит другому преподавателю"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.course.Delete")

	actor, id, err := h.target(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("course deleted", slog.Int64("course_id", id))
	response.WriteOK(w, r, http.StatusOK, map[string]any{"deleted_id": id})
}

// target возвращает текущего пользователя и id курса из пути.
func (h *Handler) target(r *http.Request) (models.User, int64, error) {
	actor, err := request.Actor(r)
	if err != nil {
		return models.User{}, 0, err
	}
	id, err := request.ID(r, "id")
	if err != nil {
		return models.User{}, 0, err
	}
	return actor, id, nil
}
