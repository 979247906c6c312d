package postgresql

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

const reviewSelect = `SELECT r.id, r.rating, r.comment, r.student_id, u.username,
		r.course_id, c.name, r.created_at, r.updated_at
	FROM reviews r
	JOIN users u ON u.uid = r.student_id
	JOIN courses c ON c.id = r.course_id`

var reviewSortColumns = map[string]string{
	"id":         "r.id",
	"rating":     "r.rating",
	"created_at": "r.created_at",
	"updated_at": "r.updated_at",
}

func scanReview(row rowScanner) (*models.Review, error) {
	r := &models.Review{}
	err := row.Scan(&r.ID, &r.Rating, &r.Comment, &r.StudentID, &r.StudentName,
		&r.CourseID, &r.CourseName, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReview сохраняет отзыв и возвращает его ID. Второй отзыв той же пары
// отклоняется ограничением reviews_student_course_key.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (int64, error) {
	const op = "storage.CreateReview"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	query := `INSERT INTO reviews (rating, comment, student_id, course_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query, review.Rating, review.Comment, review.StudentID,
		review.CourseID, review.CreatedAt, review.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, mapError(op, err, models.NotFoundError("course", review.CourseID))
	}
	return id, nil
}

// GetReview возвращает отзыв по ID.
func (s *Storage) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	const op = "storage.GetReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	r, err := scanReview(s.DB.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapError(op, err, models.NotFoundError("review", id))
	}
	return r, nil
}

// FindReview возвращает отзыв студента о курсе или ErrNotFound.
func (s *Storage) FindReview(ctx context.Context, studentID string, courseID int64) (*models.Review, error) {
	const op = "storage.FindReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, reviewSelect+` WHERE r.student_id = $1 AND r.course_id = $2`, studentID, courseID)
	r, err := scanReview(row)
	if err != nil {
		return nil, mapError(op, err, fmt.Errorf("review of course %d: %w", courseID, models.ErrNotFound))
	}
	return r, nil
}

// UpdateReview перезаписывает оценку, комментарий и время изменения.
func (s *Storage) UpdateReview(ctx context.Context, review models.Review) error {
	const op = "storage.UpdateReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1`,
		review.ID, review.Rating, review.Comment, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, res, models.NotFoundError("review", review.ID))
}

// DeleteReview удаляет отзыв.
func (s *Storage) DeleteReview(ctx context.Context, id int64) error {
	const op = "storage.DeleteReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, res, models.NotFoundError("review", id))
}

// ListReviewsByCourse возвращает страницу отзывов о курсе и их общее число.
func (s *Storage) ListReviewsByCourse(ctx context.Context, courseID int64, page models.PageRequest) ([]models.Review, int, error) {
	const op = "storage.ListReviewsByCourse"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	if err := page.CheckSort(models.ReviewSortFields); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, 0, fmt.Errorf("%s: %w", op, models.NotFoundError("course", courseID))
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE course_id = $1`, courseID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := reviewSelect + ` WHERE r.course_id = $1` + orderBy(page, reviewSortColumns, "r.id") + ` LIMIT $2 OFFSET $3`
	reviews, err := s.queryReviews(ctx, query, courseID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, total, nil
}

// ListReviewsByStudent возвращает все отзывы студента по возрастанию ID.
func (s *Storage) ListReviewsByStudent(ctx context.Context, studentID string) ([]models.Review, error) {
	const op = "storage.ListReviewsByStudent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	reviews, err := s.queryReviews(ctx, reviewSelect+` WHERE r.student_id = $1 ORDER BY r.id`, studentID)
	if err != nil {
		return nil, mapError(op, err, models.NotFoundError("student", studentID))
	}
	return reviews, nil
}

// ListReviewsByCourses возвращает отзывы, сгруппированные по курсам.
// Курсы без отзывов в карту не попадают.
func (s *Storage) ListReviewsByCourses(ctx context.Context, courseIDs []int64) (map[int64][]models.Review, error) {
	const op = "storage.ListReviewsByCourses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	out := make(map[int64][]models.Review)
	if len(courseIDs) == 0 {
		return out, nil
	}

	reviews, err := s.queryReviews(ctx, reviewSelect+` WHERE r.course_id = ANY($1) ORDER BY r.id`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range reviews {
		out[r.CourseID] = append(out[r.CourseID], r)
	}
	return out, nil
}

func (s *Storage) queryReviews(ctx context.Context, query string, args ...any) ([]models.Review, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	reviews := []models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}
