// Package instructor содержит профили преподавателей, их главную страницу и статистику.
package instructor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/stats"
)

const (
	// DefaultSort - поле сортировки списка преподавателей по умолчанию.
	DefaultSort = "username"
	// RecentItems - сколько последних курсов и отзывов показывать на главной странице.
	RecentItems = 5
)

// Repository определяет методы хранилища, нужные профилям преподавателей.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	ListUsersByRole(ctx context.Context, role models.Role, page models.PageRequest) ([]models.User, int, error)
	SearchInstructors(ctx context.Context, specialization string) ([]models.User, error)
	ListCoursesByInstructor(ctx context.Context, instructorID string) ([]models.Course, error)
	ListReviewsByCourses(ctx context.Context, courseIDs []int64) (map[int64][]models.Review, error)
}

// Service отдаёт профили и статистику преподавателей.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// portfolio - курсы преподавателя и отзывы о них.
type portfolio struct {
	courses  []models.Course
	byCourse map[int64][]models.Review
}

func (p portfolio) reviews() []models.Review {
	var all []models.Review
	for _, c := range p.courses {
		all = append(all, p.byCourse[c.ID]...)
	}
	return all
}

// List возвращает страницу преподавателей со сводками.
func (s *Service) List(ctx context.Context, page models.PageRequest) (models.Page[models.InstructorView], error) {
	const op = "instructor.List"
	page = page.Normalize(DefaultSort)
	users, total, err := s.repo.ListUsersByRole(ctx, models.RoleInstructor, page)
	if err != nil {
		return models.Page[models.InstructorView]{}, fmt.Errorf("%s: %w", op, err)
	}
	views, err := s.views(ctx, users)
	if err != nil {
		return models.Page[models.InstructorView]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(views, page, total), nil
}

// Search ищет преподавателей по подстроке специализации без учёта регистра.
func (s *Service) Search(ctx context.Context, specialization string) ([]models.InstructorView, error) {
	const op = "instructor.Search"
	users, err := s.repo.SearchInstructors(ctx, specialization)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views, err := s.views(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

// Get возвращает преподавателя со сводкой. Для студента возвращается ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.InstructorView, error) {
	const op = "instructor.Get"
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views, err := s.views(ctx, []models.User{*u})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &views[0], nil
}

// Profile возвращает профиль текущего преподавателя.
func (s *Service) Profile(ctx context.Context, actor models.User) (*models.Profile, error) {
	const op = "instructor.Profile"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p := u.Profile()
	return &p, nil
}

// UpdateProfile меняет специализацию текущего преподавателя.
func (s *Service) UpdateProfile(ctx context.Context, actor models.User, req models.UpdateInstructorProfileRequest) (*models.Profile, error) {
	const op = "instructor.UpdateProfile"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Specialization = req.Specialization
	if err := s.repo.UpdateProfile(ctx, *u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("instructor profile updated", sl.Op(op), slog.String("instructor_id", u.ID))
	p := u.Profile()
	return &p, nil
}

// Dashboard возвращает сводку, последние курсы и последние отзывы о курсах преподавателя.
func (s *Service) Dashboard(ctx context.Context, actor models.User) (*models.InstructorDashboard, error) {
	const op = "instructor.Dashboard"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.portfolio(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.InstructorDashboard{
		InstructorSummary: stats.InstructorSummary(u.ID, p.courses, p.byCourse),
		RecentCourses:     stats.LatestCourses(p.courses, RecentItems),
		RecentReviews:     stats.LatestReviews(p.reviews(), RecentItems),
	}, nil
}

// Statistics возвращает сводку, распределение оценок, самый популярный и
// самый высоко оценённый курс преподавателя.
func (s *Service) Statistics(ctx context.Context, actor models.User) (*models.InstructorStatistics, error) {
	const op = "instructor.Statistics"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.portfolio(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res := &models.InstructorStatistics{
		InstructorSummary:  stats.InstructorSummary(u.ID, p.courses, p.byCourse),
		RatingDistribution: stats.RatingDistribution(p.reviews()),
	}
	if c, ok := stats.MostPopularCourse(p.courses); ok {
		res.MostPopularCourse = &c
	}
	if c, ok := stats.HighestRatedCourse(p.courses, stats.CourseAverages(p.byCourse)); ok {
		res.HighestRatedCourse = &c
	}
	return res, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsInstructor() {
		return nil, models.NotFoundError("instructor", id)
	}
	return u, nil
}

func (s *Service) portfolio(ctx context.Context, instructorID string) (portfolio, error) {
	courses, err := s.repo.ListCoursesByInstructor(ctx, instructorID)
	if err != nil {
		return portfolio{}, err
	}
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	byCourse, err := s.repo.ListReviewsByCourses(ctx, ids)
	if err != nil {
		return portfolio{}, err
	}
	return portfolio{courses: courses, byCourse: byCourse}, nil
}

func (s *Service) views(ctx context.Context, users []models.User) ([]models.InstructorView, error) {
	views := make([]models.InstructorView, 0, len(users))
	for i := range users {
		p, err := s.portfolio(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, models.InstructorView{
			Profile:           users[i].Profile(),
			InstructorSummary: stats.InstructorSummary(users[i].ID, p.courses, p.byCourse),
		})
	}
	return views, nil
}
