// Package memory реализует хранилище маркетплейса в памяти процесса.
//
// Используется для локального запуска (storage.driver: memory) и в тестах
// сервисов. Все операции сериализуются одним sync.RWMutex; записи на курсы
// хранятся в enrollment.Relation, поэтому обе стороны связи меняются вместе.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/course-marketplace/internal/enrollment"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

type pairKey struct {
	studentID string
	courseID  int64
}

// Storage - хранилище в памяти.
type Storage struct {
	mu sync.RWMutex

	users      map[string]models.User
	byUsername map[string]string

	courses      map[int64]models.Course
	nextCourseID int64

	reviews      map[int64]models.Review
	reviewByPair map[pairKey]int64
	nextReviewID int64

	enrollments *enrollment.Relation

	now func() time.Time
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		users:        make(map[string]models.User),
		byUsername:   make(map[string]string),
		courses:      make(map[int64]models.Course),
		reviews:      make(map[int64]models.Review),
		reviewByPair: make(map[pairKey]int64),
		enrollments:  enrollment.NewRelation(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Close ничего не делает; нужен для единого интерфейса с postgres.
func (s *Storage) Close() error { return nil }

// Ping сообщает о готовности хранилища.
func (s *Storage) Ping(ctx context.Context) error {
	return checkCtx(ctx, "storage.memory.Ping")
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

// CreateUser сохраняет пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.memory.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[user.Username]; taken {
		return "", fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
	}
	user.ID = uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
	return user.ID, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.memory.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.NotFoundError("user", id))
	}
	return &u, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.memory.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("%s: user %q: %w", op, username, models.ErrNotFound)
	}
	u := s.users[id]
	return &u, nil
}

// ExistsByUsername сообщает, занято ли имя пользователя.
func (s *Storage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const op = "storage.memory.ExistsByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[username]
	return ok, nil
}

// UpdateProfile обновляет поля профиля (email, major, specialization).
func (s *Storage) UpdateProfile(ctx context.Context, user models.User) error {
	const op = "storage.memory.UpdateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("user", user.ID))
	}
	stored.Email = user.Email
	stored.Major = user.Major
	stored.Specialization = user.Specialization
	s.users[user.ID] = stored
	return nil
}

// ListUsersByRole возвращает страницу пользователей с заданной ролью и их общее число.
func (s *Storage) ListUsersByRole(ctx context.Context, role models.Role, page models.PageRequest) ([]models.User, int, error) {
	const op = "storage.memory.ListUsersByRole"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	if err := page.CheckSort(models.UserSortFields); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	var list []models.User
	for _, u := range s.users {
		if u.Role == role {
			list = append(list, u)
		}
	}
	s.mu.RUnlock()

	sortSlice(list, page.SortDir, func(a, b models.User) int {
		switch page.SortBy {
		case "created_at":
			return compareTime(a.CreatedAt, b.CreatedAt)
		default:
			return strings.Compare(a.Username, b.Username)
		}
	}, func(a, b models.User) int { return strings.Compare(a.ID, b.ID) })
	return paginate(list, page), len(list), nil
}

// SearchInstructors ищет преподавателей по подстроке специализации без учёта регистра.
func (s *Storage) SearchInstructors(ctx context.Context, specialization string) ([]models.User, error) {
	const op = "storage.memory.SearchInstructors"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	needle := strings.ToLower(specialization)
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []models.User{}
	for _, u := range s.users {
		if u.Role == models.RoleInstructor && strings.Contains(strings.ToLower(u.Specialization), needle) {
			list = append(list, u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

// CreateCourse сохраняет курс и возвращает его ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (int64, error) {
	const op = "storage.memory.CreateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[course.InstructorID]; !ok {
		return 0, fmt.Errorf("%s: %w", op, models.NotFoundError("instructor", course.InstructorID))
	}
	s.nextCourseID++
	course.ID = s.nextCourseID
	course.InstructorName = ""
	course.EnrolledCount = 0
	if course.CreatedAt.IsZero() {
		course.CreatedAt = s.now()
	}
	s.courses[course.ID] = course
	return course.ID, nil
}

// GetCourse возвращает курс по ID с именем преподавателя и числом записей.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.memory.GetCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.NotFoundError("course", id))
	}
	c = s.decorateCourse(c)
	return &c, nil
}

// ListCourses возвращает страницу каталога с учётом фильтра и общее число подходящих курсов.
func (s *Storage) ListCourses(ctx context.Context, filter models.CourseFilter, page models.PageRequest) ([]models.Course, int, error) {
	const op = "storage.memory.ListCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	if err := page.CheckSort(models.CourseSortFields); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	name := strings.ToLower(filter.Name)
	s.mu.RLock()
	var list []models.Course
	for _, c := range s.courses {
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(c.Name), name) {
			continue
		}
		list = append(list, s.decorateCourse(c))
	}
	s.mu.RUnlock()

	sortSlice(list, page.SortDir, courseComparator(page.SortBy), func(a, b models.Course) int {
		return compareInt64(a.ID, b.ID)
	})
	return paginate(list, page), len(list), nil
}

// ListCoursesByInstructor возвращает все курсы преподавателя по возрастанию ID.
func (s *Storage) ListCoursesByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	const op = "storage.memory.ListCoursesByInstructor"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []models.Course{}
	for _, c := range s.courses {
		if c.InstructorID == instructorID {
			list = append(list, s.decorateCourse(c))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// UpdateCourse перезаписывает изменяемые поля курса.
func (s *Storage) UpdateCourse(ctx context.Context, course models.Course) error {
	const op = "storage.memory.UpdateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.courses[course.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("course", course.ID))
	}
	stored.Name = course.Name
	stored.Description = course.Description
	stored.Price = course.Price
	stored.Duration = course.Duration
	stored.Level = course.Level
	s.courses[course.ID] = stored
	return nil
}

// DeleteCourse удаляет курс вместе с записями на него и отзывами.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.memory.DeleteCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("course", id))
	}
	for rid, r := range s.reviews {
		if r.CourseID == id {
			delete(s.reviews, rid)
			delete(s.reviewByPair, pairKey{r.StudentID, r.CourseID})
		}
	}
	s.enrollments.RemoveCourse(id)
	delete(s.courses, id)
	return nil
}

// Enroll записывает студента на курс.
func (s *Storage) Enroll(ctx context.Context, studentID string, courseID int64) error {
	const op = "storage.memory.Enroll"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("course", courseID))
	}
	if _, ok := s.users[studentID]; !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("student", studentID))
	}
	if err := s.enrollments.Enroll(studentID, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Unenroll отменяет запись студента на курс.
func (s *Storage) Unenroll(ctx context.Context, studentID string, courseID int64) error {
	const op = "storage.memory.Unenroll"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enrollments.Unenroll(studentID, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsEnrolled сообщает, записан ли студент на курс.
func (s *Storage) IsEnrolled(ctx context.Context, studentID string, courseID int64) (bool, error) {
	const op = "storage.memory.IsEnrolled"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enrollments.IsEnrolled(studentID, courseID), nil
}

// ListEnrolledCourses возвращает курсы студента по возрастанию ID.
func (s *Storage) ListEnrolledCourses(ctx context.Context, studentID string) ([]models.Course, error) {
	const op = "storage.memory.ListEnrolledCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.enrollments.CoursesOf(studentID)
	list := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.courses[id]; ok {
			list = append(list, s.decorateCourse(c))
		}
	}
	return list, nil
}

// CountEnrolled возвращает число студентов курса.
func (s *Storage) CountEnrolled(ctx context.Context, courseID int64) (int, error) {
	const op = "storage.memory.CountEnrolled"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enrollments.CountStudents(courseID), nil
}

// CreateReview сохраняет отзыв. Второй отзыв той же пары студент-курс
// отклоняется с ErrDuplicateReview.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (int64, error) {
	const op = "storage.memory.CreateReview"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{review.StudentID, review.CourseID}
	if _, exists := s.reviewByPair[key]; exists {
		return 0, fmt.Errorf("%s: %w", op, models.ErrDuplicateReview)
	}
	if _, ok := s.courses[review.CourseID]; !ok {
		return 0, fmt.Errorf("%s: %w", op, models.NotFoundError("course", review.CourseID))
	}
	s.nextReviewID++
	review.ID = s.nextReviewID
	review.StudentName = ""
	review.CourseName = ""
	s.reviews[review.ID] = review
	s.reviewByPair[key] = review.ID
	return review.ID, nil
}

// GetReview возвращает отзыв по ID.
func (s *Storage) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	const op = "storage.memory.GetReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.NotFoundError("review", id))
	}
	r = s.decorateReview(r)
	return &r, nil
}

// FindReview возвращает отзыв студента о курсе или ErrNotFound.
func (s *Storage) FindReview(ctx context.Context, studentID string, courseID int64) (*models.Review, error) {
	const op = "storage.memory.FindReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.reviewByPair[pairKey{studentID, courseID}]
	if !ok {
		return nil, fmt.Errorf("%s: review of course %d: %w", op, courseID, models.ErrNotFound)
	}
	r := s.decorateReview(s.reviews[id])
	return &r, nil
}

// UpdateReview перезаписывает оценку, комментарий и время изменения.
func (s *Storage) UpdateReview(ctx context.Context, review models.Review) error {
	const op = "storage.memory.UpdateReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.reviews[review.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("review", review.ID))
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	stored.UpdatedAt = review.UpdatedAt
	s.reviews[review.ID] = stored
	return nil
}

// DeleteReview удаляет отзыв.
func (s *Storage) DeleteReview(ctx context.Context, id int64) error {
	const op = "storage.memory.DeleteReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.NotFoundError("review", id))
	}
	delete(s.reviews, id)
	delete(s.reviewByPair, pairKey{r.StudentID, r.CourseID})
	return nil
}

// ListReviewsByCourse возвращает страницу отзывов о курсе и их общее число.
func (s *Storage) ListReviewsByCourse(ctx context.Context, courseID int64, page models.PageRequest) ([]models.Review, int, error) {
	const op = "storage.memory.ListReviewsByCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	if err := page.CheckSort(models.ReviewSortFields); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	if _, ok := s.courses[courseID]; !ok {
		s.mu.RUnlock()
		return nil, 0, fmt.Errorf("%s: %w", op, models.NotFoundError("course", courseID))
	}
	list := s.filterReviews(func(r models.Review) bool { return r.CourseID == courseID })
	s.mu.RUnlock()

	sortSlice(list, page.SortDir, reviewComparator(page.SortBy), func(a, b models.Review) int {
		return compareInt64(a.ID, b.ID)
	})
	return paginate(list, page), len(list), nil
}

// ListReviewsByStudent возвращает все отзывы студента по возрастанию ID.
func (s *Storage) ListReviewsByStudent(ctx context.Context, studentID string) ([]models.Review, error) {
	const op = "storage.memory.ListReviewsByStudent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.filterReviews(func(r models.Review) bool { return r.StudentID == studentID })
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// ListReviewsByCourses возвращает отзывы, сгруппированные по курсам.
// Курсы без отзывов в карту не попадают.
func (s *Storage) ListReviewsByCourses(ctx context.Context, courseIDs []int64) (map[int64][]models.Review, error) {
	const op = "storage.memory.ListReviewsByCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	wanted := make(map[int64]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.filterReviews(func(r models.Review) bool {
		_, ok := wanted[r.CourseID]
		return ok
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	out := make(map[int64][]models.Review)
	for _, r := range list {
		out[r.CourseID] = append(out[r.CourseID], r)
	}
	return out, nil
}

func (s *Storage) filterReviews(keep func(models.Review) bool) []models.Review {
	list := []models.Review{}
	for _, r := range s.reviews {
		if keep(r) {
			list = append(list, s.decorateReview(r))
		}
	}
	return list
}

// decorateCourse и decorateReview вызываются под s.mu.
func (s *Storage) decorateCourse(c models.Course) models.Course {
	c.InstructorName = s.users[c.InstructorID].Username
	c.EnrolledCount = s.enrollments.CountStudents(c.ID)
	return c
}

func (s *Storage) decorateReview(r models.Review) models.Review {
	r.StudentName = s.users[r.StudentID].Username
	r.CourseName = s.courses[r.CourseID].Name
	return r
}
