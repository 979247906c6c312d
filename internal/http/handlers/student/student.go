// Package student реализует HTTP-обработчики профиля, главной страницы
// и статистики студентов.
package student

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

// Handler обрабатывает запросы к студентам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику студентов.
type Service interface {
	List(ctx context.Context, page models.PageRequest) (models.Page[models.StudentView], error)
	Get(ctx context.Context, id string) (*models.StudentView, error)
	Profile(ctx context.Context, actor models.User) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actor models.User, req models.UpdateStudentProfileRequest) (*models.Profile, error)
	Dashboard(ctx context.Context, actor models.User) (*models.StudentDashboard, error)
	Statistics(ctx context.Context, actor models.User) (*models.StudentStatistics, error)
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

// List godoc
// @Summary Список студентов
// @Tags Students
// @Produce  json
// @Security BearerAuth
// @Param pageNo query int false "Номер страницы с нуля"
// @Param pageSize query int false "Размер страницы"
// @Param sortBy query string false "Поле сортировки" Enums(username, created_at)
// @Param sortDir query string false "Направление сортировки" Enums(asc, desc)
// @Success 200 {object} response.Response "Страница студентов со сводкой"
// @Router /students [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.student.List")

	page, err := request.Page(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.List(r.Context(), page)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Get godoc
// @Summary Студент по ID
// @Tags Students
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID студента"
// @Success 200 {object} response.Response{data=models.StudentView} "Студент"
// @Failure 404 {object} response.ErrorResponse "Студент не найден"
// @Router /students/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.student.Get")

	id, err := request.UserID(r, "id")
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

// Profile godoc
// @Summary Профиль текущего студента
// @Tags Students
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Profile} "Профиль"
// @Router /students/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.student.Profile")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Profile(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// UpdateProfile godoc
// @Summary Изменение профиля студента
// @Tags Students
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.UpdateStudentProfileRequest true "Новая специальность"
// @Success 200 {object} response.Response{data=models.Profile} "Профиль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /students/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.student.UpdateProfile")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.UpdateStudentProfileRequest
	if err := request.DecodeJSON(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.UpdateProfile(r.Context(), actor, req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("student profile updated", slog.String("student_id", actor.ID))
	response.WriteOK(w, r, http.StatusOK, res)
}

// Dashboard godoc
// @Summary Главная страница студента
// @Description Сводка, курсы студента и последние отзывы.
// @Tags Students
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.StudentDashboard} "Данные главной страницы"
// @Router /students/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.student.Dashboard")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Dashboard(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Statistics godoc
// @Summary Статистика студента
// @Description Средняя поставленная оценка, распределение оценок, любимый уровень и преподаватель.
// @Tags Students
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.StudentStatistics} "Статистика"
// @Router /students/statistics [get]
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.student.Statistics")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.Statistics(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}
