// Package review содержит сценарии работы с отзывами студентов о курсах.
//
// Студент может оставить не больше одного отзыва на курс и только на курс,
// на который записан. Менять и удалять отзыв может только его автор.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// DefaultSort - поле сортировки отзывов курса по умолчанию.
const DefaultSort = "id"

// Repository определяет методы хранилища для работы с отзывами.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	IsEnrolled(ctx context.Context, studentID string, courseID int64) (bool, error)
	CreateReview(ctx context.Context, review models.Review) (int64, error)
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	FindReview(ctx context.Context, studentID string, courseID int64) (*models.Review, error)
	UpdateReview(ctx context.Context, review models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	ListReviewsByCourse(ctx context.Context, courseID int64, page models.PageRequest) ([]models.Review, int, error)
	ListReviewsByStudent(ctx context.Context, studentID string) ([]models.Review, error)
}

// Notifier сообщает преподавателю о новом отзыве.
type Notifier interface {
	ReviewCreated(ctx context.Context, ev models.ReviewEvent) error
}

// Service управляет отзывами.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает новый экземпляр Service. notifier может быть nil.
func NewService(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func validate(rating int, comment string) error {
	if err := models.ValidateRating(rating); err != nil {
		return err
	}
	return models.ValidateComment(comment)
}

// Create создаёт отзыв текущего студента о курсе.
func (s *Service) Create(ctx context.Context, actor models.User, req models.ReviewCreateRequest) (*models.Review, error) {
	const op = "review.Create"
	if err := validate(req.Rating, req.Comment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.IsStudent() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	c, err := s.repo.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	enrolled, err := s.repo.IsEnrolled(ctx, actor.ID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !enrolled {
		return nil, fmt.Errorf("%s: course %d: %w", op, req.CourseID, models.ErrNotEnrolled)
	}
	reviewed, err := s.HasReviewed(ctx, actor.ID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if reviewed {
		return nil, fmt.Errorf("%s: course %d: %w", op, req.CourseID, models.ErrDuplicateReview)
	}

	now := s.now().UTC()
	id, err := s.repo.CreateReview(ctx, models.Review{
		Rating:    req.Rating,
		Comment:   req.Comment,
		StudentID: actor.ID,
		CourseID:  req.CourseID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("review created", sl.Op(op), slog.Int64("review_id", id), slog.Int64("course_id", req.CourseID))

	created, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.notifier != nil {
		err := s.notifier.ReviewCreated(ctx, models.ReviewEvent{
			ReviewID:     created.ID,
			Rating:       created.Rating,
			Comment:      created.Comment,
			StudentName:  created.StudentName,
			CourseID:     c.ID,
			CourseName:   c.Name,
			InstructorID: c.InstructorID,
			OccurredAt:   now,
		})
		if err != nil {
			s.log.Warn("failed to publish review event", sl.Op(op), sl.Err(err))
		}
	}
	return created, nil
}

// Update меняет оценку и комментарий. CreatedAt сохраняется, UpdatedAt обновляется.
func (s *Service) Update(ctx context.Context, actor models.User, id int64, req models.ReviewUpdateRequest) (*models.Review, error) {
	const op = "review.Update"
	if err := validate(req.Rating, req.Comment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r, err := s.authored(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.Rating = req.Rating
	r.Comment = req.Comment
	r.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateReview(ctx, *r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("review updated", sl.Op(op), slog.Int64("review_id", id))

	updated, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete безвозвратно удаляет отзыв.
func (s *Service) Delete(ctx context.Context, actor models.User, id int64) error {
	const op = "review.Delete"
	if _, err := s.authored(ctx, actor, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("review deleted", sl.Op(op), slog.Int64("review_id", id))
	return nil
}

// Get возвращает отзыв по ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Review, error) {
	const op = "review.Get"
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListByCourse возвращает страницу отзывов о курсе.
func (s *Service) ListByCourse(ctx context.Context, courseID int64, page models.PageRequest) (models.Page[models.Review], error) {
	const op = "review.ListByCourse"
	page = page.Normalize(DefaultSort)
	list, total, err := s.repo.ListReviewsByCourse(ctx, courseID, page)
	if err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(list, page, total), nil
}

// ListByStudent возвращает отзывы, оставленные текущим студентом.
func (s *Service) ListByStudent(ctx context.Context, actor models.User) ([]models.Review, error) {
	const op = "review.ListByStudent"
	if !actor.IsStudent() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	list, err := s.repo.ListReviewsByStudent(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// HasReviewed сообщает, оставил ли студент отзыв о курсе.
func (s *Service) HasReviewed(ctx context.Context, studentID string, courseID int64) (bool, error) {
	_, found, err := s.ReviewFor(ctx, studentID, courseID)
	return found, err
}

// ReviewFor возвращает отзыв студента о курсе, если он есть.
func (s *Service) ReviewFor(ctx context.Context, studentID string, courseID int64) (*models.Review, bool, error) {
	const op = "review.ReviewFor"
	r, err := s.repo.FindReview(ctx, studentID, courseID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return r, true, nil
}

// authored загружает отзыв и проверяет, что actor его автор.
func (s *Service) authored(ctx context.Context, actor models.User, id int64) (*models.Review, error) {
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.StudentID != actor.ID {
		return nil, fmt.Errorf("review %d: %w", id, models.ErrForbidden)
	}
	return r, nil
}
