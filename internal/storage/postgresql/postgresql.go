// Package postgresql реализует хранилище маркетплейса на PostgreSQL.
//
// Инварианты «одна запись на курс» и «один отзыв на курс» обеспечиваются
// ограничениями схемы; нарушения ограничений переводятся в доменные ошибки,
// поэтому гонка двух одинаковых запросов заканчивается ErrAlreadyEnrolled
// или ErrDuplicateReview, а не ошибкой драйвера.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Коды ошибок PostgreSQL.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
)

// Имена ограничений из migrations/000001_init_schema.up.sql.
const (
	constraintUsername     = "users_username_key"
	constraintEnrollment   = "enrollments_pkey"
	constraintReviewUnique = "reviews_student_course_key"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает пул соединений и проверяет доступность базы.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// Ping проверяет доступность базы.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

// mapError переводит ошибки драйвера в доменные. notFound используется для
// sql.ErrNoRows, нарушений внешнего ключа и некорректных UUID.
func mapError(op string, err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintUsername:
				return fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
			case constraintEnrollment:
				return fmt.Errorf("%s: %w", op, models.ErrAlreadyEnrolled)
			case constraintReviewUnique:
				return fmt.Errorf("%s: %w", op, models.ErrDuplicateReview)
			}
		case codeForeignKeyViolation, codeInvalidTextRepr:
			return fmt.Errorf("%s: %w", op, notFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// likePattern экранирует спецсимволы ILIKE и оборачивает строку в %...%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// orderBy строит ORDER BY по белому списку columns. Поле уже проверено
// PageRequest.CheckSort, неизвестное поле здесь невозможно.
func orderBy(page models.PageRequest, columns map[string]string, tie string) string {
	dir := "ASC"
	if page.SortDir == "desc" {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s ASC", columns[page.SortBy], dir, tie)
}

// expectOne возвращает notFound, если запрос не затронул ни одной строки.
func expectOne(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
