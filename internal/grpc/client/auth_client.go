// Package client содержит gRPC-клиента сервиса авторизации.
//
// Ответы сервера переводятся обратно в доменные ошибки, поэтому AuthClient
// взаимозаменяем с локальным auth.AuthService.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/course-marketplace/internal/grpc/authpb"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

type AuthClient struct {
	conn   *grpc.ClientConn
	client authpb.AuthServiceClient
}

// NewAuthClient создаёт клиента. Соединение устанавливается лениво при первом вызове.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn, client: authpb.NewAuthServiceClient(conn)}, nil
}

func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Register регистрирует пользователя и возвращает его ID.
func (a *AuthClient) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "client.Register"
	in, err := authpb.Strings(map[string]string{
		authpb.FieldUsername:       req.Username,
		authpb.FieldPassword:       req.Password,
		authpb.FieldEmail:          req.Email,
		authpb.FieldRole:           string(req.Role),
		authpb.FieldMajor:          req.Major,
		authpb.FieldSpecialization: req.Specialization,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	resp, err := a.client.Register(ctx, in)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, fromStatus(err, models.ErrInvalidCredentials))
	}
	return resp.GetValue(), nil
}

// Login возвращает токен доступа.
func (a *AuthClient) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	const op = "client.Login"
	in, err := authpb.Strings(map[string]string{
		authpb.FieldUsername: username,
		authpb.FieldPassword: password,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := a.client.Login(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStatus(err, models.ErrInvalidCredentials))
	}
	return &models.LoginResult{
		AccessToken: authpb.String(resp, authpb.FieldAccessToken),
		TokenType:   authpb.String(resp, authpb.FieldTokenType),
		Username:    authpb.String(resp, authpb.FieldUsername),
		Role:        models.Role(authpb.String(resp, authpb.FieldRole)),
	}, nil
}

// ValidateToken возвращает пользователя из claims токена.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	const op = "client.ValidateToken"
	resp, err := a.client.ValidateToken(ctx, wrapperspb.String(token))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStatus(err, models.ErrUnauthorized))
	}
	return &models.User{
		ID:       authpb.String(resp, authpb.FieldUserID),
		Username: authpb.String(resp, authpb.FieldUsername),
		Role:     models.Role(authpb.String(resp, authpb.FieldRole)),
	}, nil
}

// fromStatus переводит gRPC-статус в доменную ошибку. unauthenticated
// подставляется для codes.Unauthenticated.
func fromStatus(err error, unauthenticated error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%s: %w", st.Message(), unauthenticated)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", st.Message(), models.ErrUsernameTaken)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", st.Message(), models.ErrInvalidInput)
	default:
		return err
	}
}
