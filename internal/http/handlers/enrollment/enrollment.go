// Package enrollment реализует HTTP-обработчики записи студентов на курсы.
package enrollment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/course-marketplace/internal/http/request"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Handler обрабатывает запросы записи на курсы. Все запросы требуют пользователя в контексте.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику записи.
type Service interface {
	Enroll(ctx context.Context, actor models.User, courseID int64) (*models.Course, error)
	Unenroll(ctx context.Context, actor models.User, courseID int64) error
	IsEnrolled(ctx context.Context, actor models.User, courseID int64) (bool, error)
	MyEnrollments(ctx context.Context, actor models.User) ([]models.Course, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Enroll godoc
// @Summary Запись на курс
// @Tags Enrollments
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response{data=models.Course} "Курс с обновлённым числом студентов"
// @Failure 403 {object} response.ErrorResponse "Не студент"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 409 {object} response.ErrorResponse "Уже записан"
// @Router /courses/{id}/enroll [post]
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.Enroll"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, courseID, err := target(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	course, err := h.service.Enroll(r.Context(), actor, courseID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("enrolled", slog.String("student_id", actor.ID), slog.Int64("course_id", courseID))
	response.WriteOK(w, r, http.StatusOK, course)
}

// Unenroll godoc
// @Summary Отмена записи на курс
// @Tags Enrollments
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response "Запись отменена"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 409 {object} response.ErrorResponse "Не записан на курс"
// @Router /courses/{id}/unenroll [delete]
func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.Unenroll"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, courseID, err := target(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	if err := h.service.Unenroll(r.Context(), actor, courseID); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("unenrolled", slog.String("student_id", actor.ID), slog.Int64("course_id", courseID))
	response.WriteOK(w, r, http.StatusOK, map[string]any{"course_id": courseID})
}

// Check godoc
// @Summary Проверка записи на курс
// @Tags Enrollments
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response "Флаг enrolled"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id}/check-enrollment [get]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.Check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, courseID, err := target(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	enrolled, err := h.service.IsEnrolled(r.Context(), actor, courseID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, map[string]any{
		"course_id": courseID,
		"enrolled":  enrolled,
	})
}

// Mine godoc
// @Summary Курсы, на которые записан студент
// @Tags Enrollments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Course} "Курсы"
// @Failure 403 {object} response.ErrorResponse "Не студент"
// @Router /courses/my-enrollments [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.Mine"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, err := request.Actor(r)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	courses, err := h.service.MyEnrollments(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.WriteOK(w, r, http.StatusOK, courses)
}

func target(r *http.Request) (models.User, int64, error) {
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
