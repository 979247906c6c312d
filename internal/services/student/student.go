// Package student содержит профили студентов, их главную страницу и статистику.
package student

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/stats"
)

const (
	// DefaultSort - поле сортировки списка студентов по умолчанию.
	DefaultSort = "username"
	// RecentReviews - сколько последних отзывов показывать на главной странице.
	RecentReviews = 5
)

// Repository определяет методы хранилища, нужные профилям студентов.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	ListUsersByRole(ctx context.Context, role models.Role, page models.PageRequest) ([]models.User, int, error)
	ListEnrolledCourses(ctx context.Context, studentID string) ([]models.Course, error)
	ListReviewsByStudent(ctx context.Context, studentID string) ([]models.Review, error)
}

// Service отдаёт профили и статистику студентов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает страницу студентов со сводками.
func (s *Service) List(ctx context.Context, page models.PageRequest) (models.Page[models.StudentView], error) {
	const op = "student.List"
	page = page.Normalize(DefaultSort)
	users, total, err := s.repo.ListUsersByRole(ctx, models.RoleStudent, page)
	if err != nil {
		return models.Page[models.StudentView]{}, fmt.Errorf("%s: %w", op, err)
	}
	views := make([]models.StudentView, 0, len(users))
	for i := range users {
		v, err := s.view(ctx, &users[i])
		if err != nil {
			return models.Page[models.StudentView]{}, fmt.Errorf("%s: %w", op, err)
		}
		views = append(views, *v)
	}
	return models.NewPage(views, page, total), nil
}

// Get возвращает студента со сводкой. Для преподавателя возвращается ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.StudentView, error) {
	const op = "student.Get"
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	v, err := s.view(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Profile возвращает профиль текущего студента.
func (s *Service) Profile(ctx context.Context, actor models.User) (*models.Profile, error) {
	const op = "student.Profile"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p := u.Profile()
	return &p, nil
}

// UpdateProfile меняет направление обучения текущего студента.
func (s *Service) UpdateProfile(ctx context.Context, actor models.User, req models.UpdateStudentProfileRequest) (*models.Profile, error) {
	const op = "student.UpdateProfile"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Major = req.Major
	if err := s.repo.UpdateProfile(ctx, *u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("student profile updated", sl.Op(op), slog.String("student_id", u.ID))
	p := u.Profile()
	return &p, nil
}

// Dashboard возвращает сводку, курсы студента и его последние отзывы.
func (s *Service) Dashboard(ctx context.Context, actor models.User) (*models.StudentDashboard, error) {
	const op = "student.Dashboard"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	courses, reviews, err := s.activity(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.StudentDashboard{
		StudentSummary:  stats.StudentSummary(courses, reviews).Summary,
		EnrolledCourses: courses,
		RecentReviews:   stats.LatestReviews(reviews, RecentReviews),
	}, nil
}

// Statistics возвращает расширенную статистику текущего студента.
func (s *Service) Statistics(ctx context.Context, actor models.User) (*models.StudentStatistics, error) {
	const op = "student.Statistics"
	u, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	courses, reviews, err := s.activity(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sum := stats.StudentSummary(courses, reviews)
	res := &models.StudentStatistics{
		StudentSummary:          sum.Summary,
		GivenRatingDistribution: sum.GivenDistribution,
		MostEnrolledLevel:       sum.MostEnrolledLevel,
	}
	if sum.FavouriteInstructorID != "" {
		ins, err := s.repo.GetUser(ctx, sum.FavouriteInstructorID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p := ins.Profile()
		res.FavouriteInstructor = &p
	}
	return res, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsStudent() {
		return nil, models.NotFoundError("student", id)
	}
	return u, nil
}

func (s *Service) activity(ctx context.Context, studentID string) ([]models.Course, []models.Review, error) {
	courses, err := s.repo.ListEnrolledCourses(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.repo.ListReviewsByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	return courses, reviews, nil
}

func (s *Service) view(ctx context.Context, u *models.User) (*models.StudentView, error) {
	courses, reviews, err := s.activity(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &models.StudentView{
		Profile:        u.Profile(),
		StudentSummary: stats.StudentSummary(courses, reviews).Summary,
	}, nil
}
