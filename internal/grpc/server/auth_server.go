// Package server реализует gRPC-сервер для авторизационного сервиса.
//
// AuthServer обрабатывает gRPC-запросы регистрации, входа и валидации JWT токенов.
// Логирует операции и ошибки, делегирует бизнес-логику объекту AuthService.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/course-marketplace/internal/grpc/authpb"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// AuthServiceInterface - бизнес-логика авторизации, которую обслуживает сервер.
type AuthServiceInterface interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// AuthServer реализует gRPC-сервис авторизации
type AuthServer struct {
	authService AuthServiceInterface
	log         *slog.Logger
}

var _ authpb.AuthServiceServer = (*AuthServer)(nil)

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthServiceInterface, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Register создает нового пользователя
func (s *AuthServer) Register(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	username := authpb.String(req, authpb.FieldUsername)
	s.log.Info("Register request", slog.String("username", username))

	id, err := s.authService.Register(ctx, models.RegisterRequest{
		Username:       username,
		Password:       authpb.String(req, authpb.FieldPassword),
		Email:          authpb.String(req, authpb.FieldEmail),
		Role:           models.Role(authpb.String(req, authpb.FieldRole)),
		Major:          authpb.String(req, authpb.FieldMajor),
		Specialization: authpb.String(req, authpb.FieldSpecialization),
	})
	if err != nil {
		s.log.Error("Register failed", slog.String("username", username), sl.Err(err))
		return nil, toStatus(err, "registration failed")
	}
	return wrapperspb.String(id), nil
}

// Login проверяет пользователя и генерирует JWT
func (s *AuthServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username := authpb.String(req, authpb.FieldUsername)
	s.log.Info("Login request", slog.String("username", username))

	res, err := s.authService.Login(ctx, username, authpb.String(req, authpb.FieldPassword))
	if err != nil {
		s.log.Error("Login failed", slog.String("username", username), sl.Err(err))
		return nil, toStatus(err, "login failed")
	}

	out, err := authpb.Strings(map[string]string{
		authpb.FieldAccessToken: res.AccessToken,
		authpb.FieldTokenType:   res.TokenType,
		authpb.FieldUsername:    res.Username,
		authpb.FieldRole:        string(res.Role),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ValidateToken проверяет валидность JWT и возвращает данные пользователя
func (s *AuthServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	user, err := s.authService.ValidateToken(ctx, req.GetValue())
	if err != nil {
		s.log.Warn("Invalid token", sl.Err(err))
		return nil, toStatus(err, "invalid token")
	}

	out, err := authpb.Strings(map[string]string{
		authpb.FieldUserID:   user.ID,
		authpb.FieldUsername: user.Username,
		authpb.FieldRole:     string(user.Role),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus переводит доменную ошибку в gRPC-статус.
func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, msg)
	case errors.Is(err, models.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, models.ErrUsernameTaken.Error())
	case errors.Is(err, models.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}
