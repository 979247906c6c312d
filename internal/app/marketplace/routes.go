package marketplace

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация описания API для /docs.
	_ "github.com/magabrotheeeer/course-marketplace/docs"
	"github.com/magabrotheeeer/course-marketplace/internal/config"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/enrollment"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/instructor"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/review"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/student"
	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/metrics"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Deps - всё, что нужно для регистрации маршрутов.
type Deps struct {
	Logger   *slog.Logger
	Services Services
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Checks   map[string]health.Pinger
	HTTP     config.HTTPServer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(d.Metrics),
		middlewarectx.RateLimitMiddleware(logger, d.HTTP.RateLimit, d.HTTP.RateBurst),
	)

	authHandler := auth.New(logger, d.Services.Auth)
	courseHandler := course.New(logger, d.Services.Courses)
	enrollmentHandler := enrollment.New(logger, d.Services.Enrollments)
	reviewHandler := review.New(logger, d.Services.Reviews)
	studentHandler := student.New(logger, d.Services.Students)
	instructorHandler := instructor.New(logger, d.Services.Instructors, d.Services.Courses)

	authenticated := middlewarectx.JWTMiddleware(d.Services.Auth, logger)
	onlyStudents := middlewarectx.RequireRole(logger, models.RoleStudent)
	onlyInstructors := middlewarectx.RequireRole(logger, models.RoleInstructor)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/health", health.New(logger, d.Checks).ServeHTTP)

		r.Get("/courses", courseHandler.List)
		r.Get("/courses/{id}", courseHandler.Get)
		r.Get("/reviews/{id}", reviewHandler.Get)
		r.Get("/reviews/course/{courseId}", reviewHandler.ListByCourse)
		r.Get("/instructors", instructorHandler.List)
		r.Get("/instructors/search", instructorHandler.Search)
		r.Get("/instructors/{id}", instructorHandler.Get)
		r.Get("/instructors/{id}/courses", instructorHandler.Courses)

		// Преподаватели
		r.Group(func(r chi.Router) {
			r.Use(authenticated, onlyInstructors)
			r.Post("/courses", courseHandler.Create)
			r.Put("/courses/{id}", courseHandler.Update)
			r.Patch("/courses/{id}", courseHandler.Patch)
			r.Delete("/courses/{id}", courseHandler.Delete)
			r.Get("/courses/my-courses", courseHandler.MyCourses)

			r.Get("/instructors/profile", instructorHandler.Profile)
			r.Put("/instructors/profile", instructorHandler.UpdateProfile)
			r.Get("/instructors/dashboard", instructorHandler.Dashboard)
			r.Get("/instructors/statistics", instructorHandler.Statistics)
		})

		// Студенты
		r.Group(func(r chi.Router) {
			r.Use(authenticated, onlyStudents)
			r.Post("/courses/{id}/enroll", enrollmentHandler.Enroll)
			r.Delete("/courses/{id}/unenroll", enrollmentHandler.Unenroll)
			r.Get("/courses/my-enrollments", enrollmentHandler.Mine)
			r.Get("/courses/{id}/check-enrollment", enrollmentHandler.Check)

			r.Post("/reviews", reviewHandler.Create)
			r.Put("/reviews/{id}", reviewHandler.Update)
			r.Delete("/reviews/{id}", reviewHandler.Delete)
			r.Get("/reviews/my-reviews", reviewHandler.Mine)

			r.Get("/students", studentHandler.List)
			r.Get("/students/profile", studentHandler.Profile)
			r.Put("/students/profile", studentHandler.UpdateProfile)
			r.Get("/students/dashboard", studentHandler.Dashboard)
			r.Get("/students/statistics", studentHandler.Statistics)
			r.Get("/students/{id}", studentHandler.Get)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "route not found", http.StatusNotFound)
	})
}
