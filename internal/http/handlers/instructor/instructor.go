// Package instructor реализует HTTP-обработчики преподавателей: публичный
// каталог и поиск, профиль, главную страницу и статистику.
package instructor

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

// Handler обрабатывает запросы к преподавателям.
type Handler struct {
	log      *slog.Logger
	service  Service
	courses  CourseLister
	validate *validator.Validate
}

// Service описывает бизнес-логику преподавателей.
type Service interface {
	List(ctx context.Context, page models.PageRequest) (models.Page[models.InstructorView], error)
	Search(ctx context.Context, specialization string) ([]models.InstructorView, error)
	Get(ctx context.Context, id string) (*models.InstructorView, error)
	Profile(ctx context.Context, actor models.User) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actor models.User, req models.UpdateInstructorProfileRequest) (*models.Profile, error)
	Dashboard(ctx context.Context, actor models.User) (*models.InstructorDashboard, error)
	Statistics(ctx context.Context, actor models.User) (*models.InstructorStatistics, error)
}

// CourseLister отдаёт курсы преподавателя.
type CourseLister interface {
	ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service, courses CourseLister) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		courses:  courses,
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
// @Summary Список преподавателей
// @Tags Instructors
// @Produce  json
// @Param pageNo query int false "Номер страницы с нуля"
// @Param pageSize query int false "Размер страницы"
// @Param sortBy query string false "Поле сортировки" Enums(username, created_at)
// @Param sortDir query string false "Направление сортировки" Enums(asc, desc)
// @Success 200 {object} response.Response "Страница преподавателей со сводкой"
// @Router /instructors [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.List")

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

// Search godoc
// @Summary Поиск преподавателей по специализации
// @Description Поиск по подстроке без учёта регистра.
// @Tags Instructors
// @Produce  json
// @Param specialization query string true "Подстрока специализации"
// @Success 200 {object} response.Response{data=[]models.InstructorView} "Преподаватели"
// @Failure 422 {object} response.ErrorResponse "Пустой запрос"
// @Router /instructors/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.Search")

	specialization := strings.TrimSpace(r.URL.Query().Get("specialization"))
	if specialization == "" {
		response.WriteError(w, r, log, &response.HTTPError{
			Code: http.StatusUnprocessableEntity,
			Msg:  "query parameter specialization is required",
		})
		return
	}

	res, err := h.service.Search(r.Context(), specialization)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Get godoc
// @Summary Преподаватель по ID
// @Tags Instructors
// @Produce  json
// @Param id path string true "ID преподавателя"
// @Success 200 {object} response.Response{data=models.InstructorView} "Преподаватель"
// @Failure 404 {object} response.ErrorResponse "Преподаватель не найден"
// @Router /instructors/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.Get")

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

// Courses godoc
// @Summary Курсы преподавателя
// @Tags Instructors
// @Produce  json
// @Param id path string true "ID преподавателя"
// @Success 200 {object} response.Response{data=[]models.Course} "Курсы"
// @Failure 404 {object} response.ErrorResponse "Преподаватель не найден"
// @Router /instructors/{id}/courses [get]
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.Courses")

	id, err := request.UserID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.courses.ListByInstructor(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, res)
}

// Profile godoc
// @Summary Профиль текущего преподавателя
// @Tags Instructors
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Profile} "Профиль"
// @Router /instructors/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.Profile")

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
// @Summary Изменение профиля преподавателя
// @Tags Instructors
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.UpdateInstructorProfileRequest true "Новая специализация"
// @Success 200 {object} response.Response{data=models.Profile} "Профиль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /instructors/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.UpdateProfile")

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.UpdateInstructorProfileRequest
	if err := request.DecodeJSON(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	res, err := h.service.UpdateProfile(r.Context(), actor, req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("instructor profile updated", slog.String("instructor_id", actor.ID))
	response.WriteOK(w, r, http.StatusOK, res)
}

// Dashboard godoc
// @Summary Главная страница преподавателя
// @Description Сводка, последние курсы и последние отзывы.
// @Tags Instructors
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.InstructorDashboard} "Данные главной страницы"
// @Router /instructors/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.Dashboard")

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
// @Summary Статистика преподавателя
// @Description Сводка, распределение оценок, самый популярный и самый высоко оценённый курс.
// @Tags Instructors
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.InstructorStatistics} "Статистика"
// @Router /instructors/statistics [get]
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.instructor.Statistics")

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
