package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/memory"
)

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) ReviewCreated(ctx context.Context, ev models.ReviewEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *memory.Storage
	svc      *Service
	clock    *time.Time
	alice    models.User
	bob      models.User
	courseID int64
}

// newFixture создаёт курс, на который записана только alice.
func newFixture(t *testing.T, notifier Notifier) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	aliceID, err := store.CreateUser(ctx, models.User{Username: "alice", Role: models.RoleStudent})
	require.NoError(t, err)
	bobID, err := store.CreateUser(ctx, models.User{Username: "bob", Role: models.RoleStudent})
	require.NoError(t, err)
	insID, err := store.CreateUser(ctx, models.User{Username: "prof", Role: models.RoleInstructor})
	require.NoError(t, err)
	courseID, err := store.CreateCourse(ctx, models.Course{Name: "Go", Level: models.LevelBeginner, InstructorID: insID})
	require.NoError(t, err)
	require.NoError(t, store.Enroll(ctx, aliceID, courseID))

	clock := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(store, notifier, newNoopLogger())
	f := fixture{
		store:    store,
		svc:      svc,
		clock:    &clock,
		alice:    models.User{ID: aliceID, Username: "alice", Role: models.RoleStudent},
		bob:      models.User{ID: bobID, Username: "bob", Role: models.RoleStudent},
		courseID: courseID,
	}
	svc.now = func() time.Time { return *f.clock }
	return f
}

func TestService_Create(t *testing.T) {
	notifier := new(NotifierMock)
	f := newFixture(t, notifier)
	notifier.On("ReviewCreated", mock.Anything, mock.MatchedBy(func(ev models.ReviewEvent) bool {
		return ev.Rating == 5 && ev.CourseName == "Go" && ev.StudentName == "alice"
	})).Return(nil).Once()

	got, err := f.svc.Create(context.Background(), f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 5, Comment: "great"})

	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "great", got.Comment)
	assert.Equal(t, f.alice.ID, got.StudentID)
	assert.Equal(t, *f.clock, got.CreatedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	notifier.AssertExpectations(t)

	reviewed, err := f.svc.HasReviewed(context.Background(), f.alice.ID, f.courseID)
	require.NoError(t, err)
	assert.True(t, reviewed)
	r, found, err := f.svc.ReviewFor(context.Background(), f.alice.ID, f.courseID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, got.ID, r.ID)
}

func TestService_Create_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f fixture) models.User
		req     func(f fixture) models.ReviewCreateRequest
		wantErr error
	}{
		{
			name:  "not enrolled",
			actor: func(f fixture) models.User { return f.bob },
			req: func(f fixture) models.ReviewCreateRequest {
				return models.ReviewCreateRequest{CourseID: f.courseID, Rating: 4}
			},
			wantErr: models.ErrNotEnrolled,
		},
		{
			name:  "unknown course",
			actor: func(f fixture) models.User { return f.alice },
			req: func(_ fixture) models.ReviewCreateRequest {
				return models.ReviewCreateRequest{CourseID: 404, Rating: 4}
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:  "rating too high",
			actor: func(f fixture) models.User { return f.alice },
			req: func(f fixture) models.ReviewCreateRequest {
				return models.ReviewCreateRequest{CourseID: f.courseID, Rating: 6}
			},
			wantErr: models.ErrInvalidRating,
		},
		{
			name:  "rating zero",
			actor: func(f fixture) models.User { return f.alice },
			req: func(f fixture) models.ReviewCreateRequest {
				return models.ReviewCreateRequest{CourseID: f.courseID, Rating: 0}
			},
			wantErr: models.ErrInvalidRating,
		},
		{
			name:  "comment too long",
			actor: func(f fixture) models.User { return f.alice },
			req: func(f fixture) models.ReviewCreateRequest {
				return models.ReviewCreateRequest{CourseID: f.courseID, Rating: 3, Comment: strings.Repeat("я", models.MaxCommentLength+1)}
			},
			wantErr: models.ErrInvalidComment,
		},
		{
			name:  "instructor",
			actor: func(_ fixture) models.User { return models.User{ID: "x", Role: models.RoleInstructor} },
			req: func(f fixture) models.ReviewCreateRequest {
				return models.ReviewCreateRequest{CourseID: f.courseID, Rating: 3}
			},
			wantErr: models.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := new(NotifierMock)
			f := newFixture(t, notifier)

			_, err := f.svc.Create(context.Background(), tt.actor(f), tt.req(f))

			require.ErrorIs(t, err, tt.wantErr)
			list, _, err := f.store.ListReviewsByCourse(context.Background(), f.courseID, models.PageRequest{}.Normalize(DefaultSort))
			require.NoError(t, err)
			assert.Empty(t, list)
			notifier.AssertNotCalled(t, "ReviewCreated", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_CommentAtLimit(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), f.alice, models.ReviewCreateRequest{
		CourseID: f.courseID, Rating: 3, Comment: strings.Repeat("я", models.MaxCommentLength),
	})

	assert.NoError(t, err)
}

func TestService_Create_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	first, err := f.svc.Create(ctx, f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 5, Comment: "first"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 1, Comment: "second"})

	require.ErrorIs(t, err, models.ErrDuplicateReview)
	stored, err := f.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Rating)
	assert.Equal(t, "first", stored.Comment)
}

func TestService_Create_NotifierFailureIsNotFatal(t *testing.T) {
	notifier := new(NotifierMock)
	f := newFixture(t, notifier)
	notifier.On("ReviewCreated", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	got, err := f.svc.Create(context.Background(), f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 4})

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 2, Comment: "meh"})
	require.NoError(t, err)

	later := f.clock.Add(time.Hour)
	*f.clock = later

	t.Run("author", func(t *testing.T) {
		got, err := f.svc.Update(ctx, f.alice, created.ID, models.ReviewUpdateRequest{Rating: 4, Comment: "better"})
		require.NoError(t, err)
		assert.Equal(t, 4, got.Rating)
		assert.Equal(t, "better", got.Comment)
		assert.Equal(t, created.CreatedAt, got.CreatedAt)
		assert.Equal(t, later, got.UpdatedAt)
	})

	t.Run("not the author", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.bob, created.ID, models.ReviewUpdateRequest{Rating: 1})
		require.ErrorIs(t, err, models.ErrForbidden)

		stored, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.Rating)
	})

	t.Run("invalid rating", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.alice, created.ID, models.ReviewUpdateRequest{Rating: 9})
		assert.ErrorIs(t, err, models.ErrInvalidRating)
	})

	t.Run("missing review", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.alice, 999, models.ReviewUpdateRequest{Rating: 3})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 2})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, f.bob, created.ID), models.ErrForbidden)
	_, err = f.svc.Get(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.alice, created.ID))
	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.alice, created.ID), models.ErrNotFound)

	reviewed, err := f.svc.HasReviewed(ctx, f.alice.ID, f.courseID)
	require.NoError(t, err)
	assert.False(t, reviewed)
}

func TestService_Lists(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.alice, models.ReviewCreateRequest{CourseID: f.courseID, Rating: 5})
	require.NoError(t, err)

	page, err := f.svc.ListByCourse(ctx, f.courseID, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalElements)
	assert.True(t, page.Last)

	_, err = f.svc.ListByCourse(ctx, 404, models.PageRequest{})
	assert.ErrorIs(t, err, models.ErrNotFound)

	mine, err := f.svc.ListByStudent(ctx, f.alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.ListByStudent(ctx, models.User{ID: "x", Role: models.RoleInstructor})
	assert.ErrorIs(t, err, models.ErrForbidden)
}
