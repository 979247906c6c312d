// Package course содержит каталог курсов: публикацию, изменение и удаление
// курсов преподавателем и чтение каталога с кешированием карточек курса.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// DefaultSort - поле сортировки каталога по умолчанию.
const DefaultSort = "id"

// Repository определяет методы хранилища, нужные каталогу.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateCourse(ctx context.Context, course models.Course) (int64, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.CourseFilter, page models.PageRequest) ([]models.Course, int, error)
	ListCoursesByInstructor(ctx context.Context, instructorID string) ([]models.Course, error)
	UpdateCourse(ctx context.Context, course models.Course) error
	DeleteCourse(ctx context.Context, id int64) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует работу с каталогом курсов. Кеш необязателен: при nil
// все чтения идут в хранилище.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("course:%d", id)
}

// Create публикует курс от имени преподавателя.
func (s *Service) Create(ctx context.Context, actor models.User, req models.CourseRequest) (*models.Course, error) {
	const op = "course.Create"
	if !actor.IsInstructor() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if !req.Level.Valid() {
		return nil, fmt.Errorf("%s: level %q: %w", op, req.Level, models.ErrInvalidInput)
	}

	id, err := s.repo.CreateCourse(ctx, models.Course{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Duration:     req.Duration,
		Level:        req.Level,
		InstructorID: actor.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("course created", sl.Op(op), slog.Int64("course_id", id), slog.String("instructor_id", actor.ID))

	created, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Get возвращает курс по ID, используя кеш или репозиторий.
func (s *Service) Get(ctx context.Context, id int64) (*models.Course, error) {
	const op = "course.Get"
	key := cacheKey(id)
	if s.cache != nil {
		var cached models.Course
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("failed to read course from cache", sl.Op(op), slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	c, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, c, s.ttl); err != nil {
			s.log.Warn("failed to add course to cache", sl.Op(op), slog.String("key", key), sl.Err(err))
		}
	}
	return c, nil
}

// List возвращает страницу каталога с фильтром по названию и уровню.
func (s *Service) List(ctx context.Context, filter models.CourseFilter, page models.PageRequest) (models.Page[models.Course], error) {
	const op = "course.List"
	if filter.Level != "" && !filter.Level.Valid() {
		return models.Page[models.Course]{}, fmt.Errorf("%s: level %q: %w", op, filter.Level, models.ErrInvalidInput)
	}
	page = page.Normalize(DefaultSort)
	courses, total, err := s.repo.ListCourses(ctx, filter, page)
	if err != nil {
		return models.Page[models.Course]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(courses, page, total), nil
}

// ListMine возвращает курсы текущего преподавателя.
func (s *Service) ListMine(ctx context.Context, actor models.User) ([]models.Course, error) {
	const op = "course.ListMine"
	if !actor.IsInstructor() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	courses, err := s.repo.ListCoursesByInstructor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}

// ListByInstructor возвращает курсы преподавателя. Для неизвестного
// пользователя и для студента возвращается ErrNotFound.
func (s *Service) ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	const op = "course.ListByInstructor"
	u, err := s.repo.GetUser(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !u.IsInstructor() {
		return nil, fmt.Errorf("%s: %w", op, models.NotFoundError("instructor", instructorID))
	}
	courses, err := s.repo.ListCoursesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}

// Update полностью заменяет изменяемые поля курса.
func (s *Service) Update(ctx context.Context, actor models.User, id int64, req models.CourseRequest) (*models.Course, error) {
	const op = "course.Update"
	return s.modify(ctx, op, actor, id, func(c *models.Course) {
		c.Name = req.Name
		c.Description = req.Description
		c.Price = req.Price
		c.Duration = req.Duration
		c.Level = req.Level
	})
}

// Patch меняет только переданные поля курса.
func (s *Service) Patch(ctx context.Context, actor models.User, id int64, patch models.CoursePatch) (*models.Course, error) {
	const op = "course.Patch"
	return s.modify(ctx, op, actor, id, patch.Apply)
}

func (s *Service) modify(ctx context.Context, op string, actor models.User, id int64, change func(*models.Course)) (*models.Course, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	change(c)
	if !c.Level.Valid() {
		return nil, fmt.Errorf("%s: level %q: %w", op, c.Level, models.ErrInvalidInput)
	}
	if err := s.repo.UpdateCourse(ctx, *c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.InvalidateCourse(ctx, id)
	s.log.Info("course updated", sl.Op(op), slog.Int64("course_id", id))

	updated, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет курс вместе с записями и отзывами.
func (s *Service) Delete(ctx context.Context, actor models.User, id int64) error {
	const op = "course.Delete"
	if _, err := s.owned(ctx, actor, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.InvalidateCourse(ctx, id)
	s.log.Info("course deleted", sl.Op(op), slog.Int64("course_id", id))
	return nil
}

// InvalidateCourse удаляет карточку курса из кеша. Ошибка кеша только логируется.
func (s *Service) InvalidateCourse(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to remove course from cache", slog.Int64("course_id", id), sl.Err(err))
	}
}

// owned загружает курс мимо кеша и проверяет, что actor его владелец.
func (s *Service) owned(ctx context.Context, actor models.User, id int64) (*models.Course, error) {
	c, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsInstructor() || c.InstructorID != actor.ID {
		return nil, fmt.Errorf("course %d: %w", id, models.ErrForbidden)
	}
	return c, nil
}
