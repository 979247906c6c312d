// Package marketplace собирает HTTP API маркетплейса курсов: хранилище,
// миграции, кэш каталога, публикацию событий, аутентификацию и маршруты.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/course-marketplace/internal/cache"
	"github.com/magabrotheeeer/course-marketplace/internal/config"
	"github.com/magabrotheeeer/course-marketplace/internal/grpc/client"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/metrics"
	"github.com/magabrotheeeer/course-marketplace/internal/migrations"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	authservice "github.com/magabrotheeeer/course-marketplace/internal/services/auth"
	courseservice "github.com/magabrotheeeer/course-marketplace/internal/services/course"
	enrollmentservice "github.com/magabrotheeeer/course-marketplace/internal/services/enrollment"
	instructorservice "github.com/magabrotheeeer/course-marketplace/internal/services/instructor"
	"github.com/magabrotheeeer/course-marketplace/internal/services/notifier"
	reviewservice "github.com/magabrotheeeer/course-marketplace/internal/services/review"
	studentservice "github.com/magabrotheeeer/course-marketplace/internal/services/student"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/memory"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/postgresql"
)

const shutdownTimeout = 15 * time.Second

// Store объединяет контракты хранилища, которые нужны сервисам.
// Ему удовлетворяют postgresql.Storage и memory.Storage.
type Store interface {
	authservice.UserRepository
	courseservice.Repository
	enrollmentservice.Repository
	reviewservice.Repository
	studentservice.Repository
	instructorservice.Repository
	Ping(ctx context.Context) error
	Close() error
}

// AuthService реализуют локальный сервис аутентификации и gRPC-клиент auth-service.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// Services - сервисы, которые обслуживают маршруты.
type Services struct {
	Auth        AuthService
	Courses     *courseservice.Service
	Enrollments *enrollmentservice.Service
	Reviews     *reviewservice.Service
	Students    *studentservice.Service
	Instructors *instructorservice.Service
}

// NewServices связывает сервисы между собой поверх одного хранилища.
// courseCache и publisher могут быть nil: тогда кэш и публикация событий отключены.
func NewServices(
	store Store,
	auth AuthService,
	courseCache courseservice.Cache,
	cacheTTL time.Duration,
	publisher notifier.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) Services {
	courses := courseservice.NewService(store, courseCache, cacheTTL, logger)
	events := notifier.New(publisher, store, m, logger)
	return Services{
		Auth:        auth,
		Courses:     courses,
		Enrollments: enrollmentservice.NewService(store, courses, events, logger),
		Reviews:     reviewservice.NewService(store, events, logger),
		Students:    studentservice.NewService(store, logger),
		Instructors: instructorservice.NewService(store, logger),
	}
}

// App - HTTP-приложение маркетплейса.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
}

// New подключает зависимости согласно cfg и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.marketplace.New"
	a := &App{logger: logger}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, store)
	checks := map[string]health.Pinger{"storage": store}

	var courseCache courseservice.Cache
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, redisCache)
		courseCache = redisCache
		checks["cache"] = redisCache
	} else {
		logger.Info("redis address is empty, course cache disabled")
	}

	var publisher notifier.Publisher
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		pub := rabbitmq.NewPublisher(ch)
		a.closers = append(a.closers, pub)
		publisher = pub
	} else {
		logger.Info("rabbitmq url is empty, domain events disabled")
	}

	var auth AuthService
	if cfg.GRPCAuthAddress != "" {
		authClient, err := client.NewAuthClient(cfg.GRPCAuthAddress)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, authClient)
		auth = authClient
		logger.Info("using remote auth service", slog.String("address", cfg.GRPCAuthAddress))
	} else {
		auth = authservice.NewAuthService(store, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Services: NewServices(store, auth, courseCache, cfg.CacheTTL, publisher, m, logger),
		Metrics:  m,
		Gatherer: registry,
		Checks:   checks,
		HTTP:     cfg.HTTPServer,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// openStore открывает хранилище выбранного драйвера. Для postgres применяются миграции.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data will be lost on restart")
		return memory.New(), nil
	default:
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
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в порядке, обратном порядку открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
}
