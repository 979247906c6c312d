package postgresql

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Enroll записывает студента на курс. Повторная запись отклоняется
// первичным ключом таблицы enrollments.
func (s *Storage) Enroll(ctx context.Context, studentID string, courseID int64) error {
	const op = "storage.Enroll"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO enrollments (student_id, course_id) VALUES ($1, $2)`, studentID, courseID)
	if err != nil {
		return mapError(op, err, models.NotFoundError("course", courseID))
	}
	return nil
}

// Unenroll отменяет запись студента на курс.
func (s *Storage) Unenroll(ctx context.Context, studentID string, courseID int64) error {
	const op = "storage.Unenroll"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		return mapError(op, err, models.ErrNotEnrolled)
	}
	return expectOne(op, res, models.ErrNotEnrolled)
}

// IsEnrolled сообщает, записан ли студент на курс.
func (s *Storage) IsEnrolled(ctx context.Context, studentID string, courseID int64) (bool, error) {
	const op = "storage.IsEnrolled"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListEnrolledCourses возвращает курсы студента по возрастанию ID.
func (s *Storage) ListEnrolledCourses(ctx context.Context, studentID string) ([]models.Course, error) {
	const op = "storage.ListEnrolledCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := courseSelect + `
		JOIN enrollments en ON en.course_id = c.id
		WHERE en.student_id = $1
		ORDER BY c.id`
	courses, err := s.queryCourses(ctx, query, studentID)
	if err != nil {
		return nil, mapError(op, err, models.NotFoundError("student", studentID))
	}
	return courses, nil
}

// CountEnrolled возвращает число студентов курса.
func (s *Storage) CountEnrolled(ctx context.Context, courseID int64) (int, error) {
	const op = "storage.CountEnrolled"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
