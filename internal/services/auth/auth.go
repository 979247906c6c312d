// Package auth содержит регистрацию, вход и проверку токенов доступа.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// TokenType возвращается клиенту вместе с токеном.
const TokenType = "Bearer"

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// ExistsByUsername сообщает, занято ли имя.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// GetUserByUsername возвращает пользователя по имени или ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создаёт студента или преподавателя. Поля профиля другой роли отбрасываются.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "auth.Register"
	if !req.Role.Valid() {
		return "", fmt.Errorf("%s: role %q: %w", op, req.Role, models.ErrInvalidInput)
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return "", fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
	}

	hashed, err := password.GetHash(req.Password)
	if errors.Is(err, password.ErrTooLong) {
		return "", fmt.Errorf("%s: %w: %w", op, models.ErrInvalidInput, err)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	switch req.Role {
	case models.RoleStudent:
		user.Major = req.Major
	case models.RoleInstructor:
		user.Specialization = req.Specialization
	}

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", sl.Op(op), slog.String("user_id", id), slog.String("role", string(req.Role)))
	return id, nil
}

// Login проверяет пароль и выпускает токен доступа.
// Неизвестный пользователь и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (*models.LoginResult, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Error("stored password hash is broken", sl.Op(op), slog.String("user_id", user.ID), sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		Username:    user.Username,
		Role:        user.Role,
	}, nil
}

// ValidateToken проверяет токен и возвращает пользователя из его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthorized, err)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%s: role %q: %w", op, claims.Role, models.ErrUnauthorized)
	}
	return &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}
