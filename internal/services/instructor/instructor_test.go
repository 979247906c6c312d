package instructor_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/services/instructor"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/memory"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store   *memory.Storage
	prof    models.User
	student models.User
	courseA int64
	courseB int64
}

// newFixture: курс A с тремя студентами и оценками 5, 3, 4; курс B с одним студентом и оценкой 5.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	mkUser := func(u models.User) models.User {
		id, err := store.CreateUser(ctx, u)
		require.NoError(t, err)
		u.ID = id
		return u
	}
	f := fixture{
		store: store,
		prof:  mkUser(models.User{Username: "prof", Role: models.RoleInstructor, Specialization: "Backend Go"}),
	}
	mkUser(models.User{Username: "other", Role: models.RoleInstructor, Specialization: "Design"})

	var err error
	f.courseA, err = store.CreateCourse(ctx, models.Course{Name: "A", Level: models.LevelBeginner, InstructorID: f.prof.ID})
	require.NoError(t, err)
	f.courseB, err = store.CreateCourse(ctx, models.Course{Name: "B", Level: models.LevelAdvanced, InstructorID: f.prof.ID})
	require.NoError(t, err)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	enrollAndReview := func(name string, courseID int64, rating int, at time.Duration) models.User {
		s := mkUser(models.User{Username: name, Role: models.RoleStudent})
		require.NoError(t, store.Enroll(ctx, s.ID, courseID))
		_, err := store.CreateReview(ctx, models.Review{
			StudentID: s.ID, CourseID: courseID, Rating: rating,
			CreatedAt: base.Add(at), UpdatedAt: base.Add(at),
		})
		require.NoError(t, err)
		return s
	}
	f.student = enrollAndReview("s1", f.courseA, 5, 0)
	enrollAndReview("s2", f.courseA, 3, time.Hour)
	enrollAndReview("s3", f.courseA, 4, 2*time.Hour)
	enrollAndReview("s4", f.courseB, 5, 3*time.Hour)
	return f
}

func TestService_Statistics(t *testing.T) {
	f := newFixture(t)
	svc := instructor.NewService(f.store, newNoopLogger())

	got, err := svc.Statistics(context.Background(), f.prof)

	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalCourses)
	assert.Equal(t, 4, got.TotalStudents)
	assert.Equal(t, 4, got.TotalReviews)
	assert.InDelta(t, 4.3, got.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{5: 2, 4: 1, 3: 1}, got.RatingDistribution)
	require.NotNil(t, got.MostPopularCourse)
	assert.Equal(t, f.courseA, got.MostPopularCourse.ID)
	require.NotNil(t, got.HighestRatedCourse)
	assert.Equal(t, f.courseB, got.HighestRatedCourse.ID)
}

func TestService_Statistics_NoCourses(t *testing.T) {
	store := memory.New()
	id, err := store.CreateUser(context.Background(), models.User{Username: "new", Role: models.RoleInstructor})
	require.NoError(t, err)
	svc := instructor.NewService(store, newNoopLogger())

	got, err := svc.Statistics(context.Background(), models.User{ID: id, Role: models.RoleInstructor})

	require.NoError(t, err)
	assert.Zero(t, got.TotalCourses)
	assert.Zero(t, got.AverageRating)
	assert.Nil(t, got.MostPopularCourse)
	assert.Nil(t, got.HighestRatedCourse)
	assert.Empty(t, got.RatingDistribution)
}

func TestService_Dashboard(t *testing.T) {
	f := newFixture(t)
	svc := instructor.NewService(f.store, newNoopLogger())

	got, err := svc.Dashboard(context.Background(), f.prof)

	require.NoError(t, err)
	require.Len(t, got.RecentCourses, 2)
	assert.Equal(t, f.courseB, got.RecentCourses[0].ID)
	require.Len(t, got.RecentReviews, 4)
	assert.Equal(t, f.courseB, got.RecentReviews[0].CourseID)
	assert.Equal(t, 4, got.TotalStudents)
}

func TestService_GetListSearch(t *testing.T) {
	f := newFixture(t)
	svc := instructor.NewService(f.store, newNoopLogger())
	ctx := context.Background()

	view, err := svc.Get(ctx, f.prof.ID)
	require.NoError(t, err)
	assert.Equal(t, "prof", view.Username)
	assert.Equal(t, 2, view.TotalCourses)

	_, err = svc.Get(ctx, f.student.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	page, err := svc.List(ctx, models.PageRequest{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "other", page.Content[0].Username)

	found, err := svc.Search(ctx, "go")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "prof", found[0].Username)
	assert.InDelta(t, 4.3, found[0].AverageRating, 1e-9)
}

func TestService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := instructor.NewService(f.store, newNoopLogger())
	ctx := context.Background()

	got, err := svc.UpdateProfile(ctx, f.prof, models.UpdateInstructorProfileRequest{Specialization: "Databases"})
	require.NoError(t, err)
	assert.Equal(t, "Databases", got.Specialization)

	profile, err := svc.Profile(ctx, f.prof)
	require.NoError(t, err)
	assert.Equal(t, "Databases", profile.Specialization)

	_, err = svc.UpdateProfile(ctx, f.student, models.UpdateInstructorProfileRequest{Specialization: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
