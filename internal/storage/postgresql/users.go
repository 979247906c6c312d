package postgresql

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

const userColumns = `uid, username, email, password_hash, role, major, specialization, created_at`

var userSortColumns = map[string]string{
	"username":   "username",
	"created_at": "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.Major, &u.Specialization, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var id string
	query := `INSERT INTO users (username, email, password_hash, role, major, specialization)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid`
	err := s.DB.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash,
		user.Role, user.Major, user.Specialization).Scan(&id)
	if err != nil {
		return "", mapError(op, err, models.ErrNotFound)
	}
	return id, nil
}

// GetUser возвращает пользователя по UID.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(op, err, models.NotFoundError("user", id))
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(op, err, fmt.Errorf("user %q: %w", username, models.ErrNotFound))
	}
	return u, nil
}

// ExistsByUsername сообщает, занято ли имя пользователя.
func (s *Storage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const op = "storage.ExistsByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// UpdateProfile обновляет email, major и specialization пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, user models.User) error {
	const op = "storage.UpdateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET email = $2, major = $3, specialization = $4 WHERE uid = $1`,
		user.ID, user.Email, user.Major, user.Specialization)
	if err != nil {
		return mapError(op, err, models.NotFoundError("user", user.ID))
	}
	return expectOne(op, res, models.NotFoundError("user", user.ID))
}

// ListUsersByRole возвращает страницу пользователей с ролью role и их общее число.
func (s *Storage) ListUsersByRole(ctx context.Context, role models.Role, page models.PageRequest) ([]models.User, int, error) {
	const op = "storage.ListUsersByRole"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	if err := page.CheckSort(models.UserSortFields); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1` +
		orderBy(page, userSortColumns, "uid") + ` LIMIT $2 OFFSET $3`
	users, err := s.queryUsers(ctx, query, role, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// SearchInstructors ищет преподавателей по подстроке специализации без учёта регистра.
func (s *Storage) SearchInstructors(ctx context.Context, specialization string) ([]models.User, error) {
	const op = "storage.SearchInstructors"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE role = $1 AND specialization ILIKE $2
			  ORDER BY username`
	users, err := s.queryUsers(ctx, query, models.RoleInstructor, likePattern(specialization))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *Storage) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
