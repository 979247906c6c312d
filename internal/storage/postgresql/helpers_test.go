package postgresql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/course-marketplace/internal/migrations"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("marketplace"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	return storage
}

// TestDataFactory создаёт тестовые данные через публичные методы хранилища.
type TestDataFactory struct {
	t       *testing.T
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(t *testing.T, storage *Storage) *TestDataFactory {
	return &TestDataFactory{t: t, storage: storage}
}

// Instructor создаёт преподавателя.
func (f *TestDataFactory) Instructor(username, specialization string) string {
	id, err := f.storage.CreateUser(context.Background(), models.User{
		Username:       username,
		Email:          username + "@example.com",
		PasswordHash:   "hash",
		Role:           models.RoleInstructor,
		Specialization: specialization,
	})
	require.NoError(f.t, err)
	return id
}

// Student создаёт студента.
func (f *TestDataFactory) Student(username string) string {
	id, err := f.storage.CreateUser(context.Background(), models.User{
		Username:     username,
		PasswordHash: "hash",
		Role:         models.RoleStudent,
		Major:        "CS",
	})
	require.NoError(f.t, err)
	return id
}

// Course создаёт курс преподавателя.
func (f *TestDataFactory) Course(instructorID, name string, level models.Level, price float64) int64 {
	id, err := f.storage.CreateCourse(context.Background(), models.Course{
		Name:         name,
		Price:        price,
		Duration:     10,
		Level:        level,
		InstructorID: instructorID,
	})
	require.NoError(f.t, err)
	return id
}

// Review создаёт отзыв.
func (f *TestDataFactory) Review(studentID string, courseID int64, rating int) int64 {
	now := time.Now().UTC().Truncate(time.Microsecond)
	id, err := f.storage.CreateReview(context.Background(), models.Review{
		Rating:    rating,
		StudentID: studentID,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(f.t, err)
	return id
}
