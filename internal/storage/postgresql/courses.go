package postgresql

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

const courseSelect = `SELECT c.id, c.name, c.description, c.price, c.duration, c.level,
		c.instructor_id, u.username,
		(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id),
		c.created_at
	FROM courses c
	JOIN users u ON u.uid = c.instructor_id`

var courseSortColumns = map[string]string{
	"id":       "c.id",
	"name":     "c.name",
	"price":    "c.price",
	"duration": "c.duration",
	"level": `CASE c.level WHEN 'BEGINNER' THEN 0 WHEN 'INTERMEDIATE' THEN 1
		WHEN 'ADVANCED' THEN 2 ELSE 3 END`,
	"created_at": "c.created_at",
}

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.Duration, &c.Level,
		&c.InstructorID, &c.InstructorName, &c.EnrolledCount, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCourse сохраняет курс и возвращает его ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (int64, error) {
	const op = "storage.CreateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	query := `INSERT INTO courses (name, description, price, duration, level, instructor_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query, course.Name, course.Description, course.Price,
		course.Duration, course.Level, course.InstructorID).Scan(&id)
	if err != nil {
		return 0, mapError(op, err, models.NotFoundError("instructor", course.InstructorID))
	}
	return id, nil
}

// GetCourse возвращает курс по ID с именем преподавателя и числом записей.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.GetCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCourse(s.DB.QueryRowContext(ctx, courseSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapError(op, err, models.NotFoundError("course", id))
	}
	return c, nil
}

// ListCourses возвращает страницу каталога и общее число подходящих под фильтр курсов.
func (s *Storage) ListCourses(ctx context.Context, filter models.CourseFilter, page models.PageRequest) ([]models.Course, int, error) {
	const op = "storage.ListCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	if err := page.CheckSort(models.CourseSortFields); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	where := ` WHERE ($1 = '' OR c.name ILIKE $2) AND ($3 = '' OR c.level = $3)`
	args := []any{filter.Name, likePattern(filter.Name), string(filter.Level)}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := courseSelect + where + orderBy(page, courseSortColumns, "c.id") + ` LIMIT $4 OFFSET $5`
	courses, err := s.queryCourses(ctx, query, append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return courses, total, nil
}

// ListCoursesByInstructor возвращает все курсы преподавателя по возрастанию ID.
func (s *Storage) ListCoursesByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	const op = "storage.ListCoursesByInstructor"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	courses, err := s.queryCourses(ctx, courseSelect+` WHERE c.instructor_id = $1 ORDER BY c.id`, instructorID)
	if err != nil {
		return nil, mapError(op, err, models.NotFoundError("instructor", instructorID))
	}
	return courses, nil
}

// UpdateCourse перезаписывает изменяемые поля курса.
func (s *Storage) UpdateCourse(ctx context.Context, course models.Course) error {
	const op = "storage.UpdateCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE courses SET name = $2, description = $3, price = $4, duration = $5, level = $6
		 WHERE id = $1`,
		course.ID, course.Name, course.Description, course.Price, course.Duration, course.Level)
	if err != nil {
		return mapError(op, err, models.NotFoundError("course", course.ID))
	}
	return expectOne(op, res, models.NotFoundError("course", course.ID))
}

// DeleteCourse удаляет курс; записи и отзывы удаляются каскадно.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.DeleteCourse"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, res, models.NotFoundError("course", id))
}

func (s *Storage) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}
