// Package enrollment содержит сценарии записи студентов на курсы.
package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Repository определяет методы хранилища для работы с записями.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	Enroll(ctx context.Context, studentID string, courseID int64) error
	Unenroll(ctx context.Context, studentID string, courseID int64) error
	IsEnrolled(ctx context.Context, studentID string, courseID int64) (bool, error)
	ListEnrolledCourses(ctx context.Context, studentID string) ([]models.Course, error)
}

// CourseCache сбрасывает закешированную карточку курса: в ней хранится число записей.
type CourseCache interface {
	InvalidateCourse(ctx context.Context, id int64)
}

// Notifier сообщает преподавателю о новой записи.
type Notifier interface {
	EnrollmentCreated(ctx context.Context, ev models.EnrollmentEvent) error
}

// Service управляет записями студентов на курсы.
type Service struct {
	repo     Repository
	courses  CourseCache
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает новый экземпляр Service. courses и notifier могут быть nil.
func NewService(repo Repository, courses CourseCache, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		courses:  courses,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Enroll записывает студента на курс и возвращает курс с обновлённым числом записей.
// Все проверки выполняются до изменения состояния.
func (s *Service) Enroll(ctx context.Context, actor models.User, courseID int64) (*models.Course, error) {
	const op = "enrollment.Enroll"
	student, err := s.student(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	enrolled, err := s.repo.IsEnrolled(ctx, student.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if enrolled {
		return nil, fmt.Errorf("%s: course %d: %w", op, courseID, models.ErrAlreadyEnrolled)
	}

	if err := s.repo.Enroll(ctx, student.ID, courseID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("student enrolled", sl.Op(op), slog.String("student_id", student.ID), slog.Int64("course_id", courseID))
	if s.courses != nil {
		s.courses.InvalidateCourse(ctx, courseID)
	}

	if s.notifier != nil {
		err := s.notifier.EnrollmentCreated(ctx, models.EnrollmentEvent{
			StudentID:    student.ID,
			StudentName:  student.Username,
			CourseID:     c.ID,
			CourseName:   c.Name,
			InstructorID: c.InstructorID,
			OccurredAt:   s.now().UTC(),
		})
		if err != nil {
			s.log.Warn("failed to publish enrollment event", sl.Op(op), sl.Err(err))
		}
	}

	updated, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Unenroll отменяет запись студента на курс.
func (s *Service) Unenroll(ctx context.Context, actor models.User, courseID int64) error {
	const op = "enrollment.Unenroll"
	if !actor.IsStudent() {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.Unenroll(ctx, actor.ID, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("student unenrolled", sl.Op(op), slog.String("student_id", actor.ID), slog.Int64("course_id", courseID))
	if s.courses != nil {
		s.courses.InvalidateCourse(ctx, courseID)
	}
	return nil
}

// IsEnrolled сообщает, записан ли текущий студент на курс.
func (s *Service) IsEnrolled(ctx context.Context, actor models.User, courseID int64) (bool, error) {
	const op = "enrollment.IsEnrolled"
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.IsStudent() {
		return false, nil
	}
	enrolled, err := s.repo.IsEnrolled(ctx, actor.ID, courseID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return enrolled, nil
}

// MyEnrollments возвращает курсы, на которые записан текущий студент.
func (s *Service) MyEnrollments(ctx context.Context, actor models.User) ([]models.Course, error) {
	const op = "enrollment.MyEnrollments"
	if !actor.IsStudent() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	courses, err := s.repo.ListEnrolledCourses(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}

// student проверяет, что actor существует и является студентом.
func (s *Service) student(ctx context.Context, actor models.User) (*models.User, error) {
	if !actor.IsStudent() {
		return nil, models.ErrForbidden
	}
	u, err := s.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !u.IsStudent() {
		return nil, models.ErrForbidden
	}
	return u, nil
}
