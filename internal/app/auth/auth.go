// Package auth собирает gRPC-сервис авторизации: хранилище пользователей,
// выпуск JWT и стандартную проверку здоровья gRPC.
package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/course-marketplace/internal/config"
	"github.com/magabrotheeeer/course-marketplace/internal/grpc/authpb"
	"github.com/magabrotheeeer/course-marketplace/internal/grpc/server"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/migrations"
	authservices "github.com/magabrotheeeer/course-marketplace/internal/services/auth"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/memory"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/postgresql"
)

type userStore interface {
	authservices.UserRepository
	io.Closer
}

type App struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	store      userStore
	logger     *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"
	store, err := openUsers(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservices.NewAuthService(store, jwtMaker, logger)

	lis, err := net.Listen("tcp", cfg.GRPCAuthAddress)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	authpb.RegisterAuthServiceServer(grpcServer, server.NewAuthServer(authService, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(authpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &App{
		grpcServer: grpcServer,
		health:     healthServer,
		listener:   lis,
		store:      store,
		logger:     logger,
	}, nil
}

func openUsers(ctx context.Context, cfg *config.Config, logger *slog.Logger) (userStore, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage, users will be lost on restart")
		return memory.New(), nil
	}
	db, err := postgresql.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Addr возвращает адрес, на котором слушает сервер.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.Addr()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.logger.Info("Auth gRPC service shutting down gracefully")
		a.health.Shutdown()
		a.grpcServer.GracefulStop()
	case err = <-errCh:
	}
	if cerr := a.store.Close(); cerr != nil {
		a.logger.Error("failed to close storage", sl.Err(cerr))
	}
	return err
}
