package student

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, page models.PageRequest) (models.Page[models.StudentView], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(models.Page[models.StudentView]), args.Error(1)
}

func (m *ServiceMock) Get(ctx context.Context, id string) (*models.StudentView, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*models.StudentView)
	return res, args.Error(1)
}

func (m *ServiceMock) Profile(ctx context.Context, actor models.User) (*models.Profile, error) {
	args := m.Called(ctx, actor)
	res, _ := args.Get(0).(*models.Profile)
	return res, args.Error(1)
}

func (m *ServiceMock) UpdateProfile(ctx context.Context, actor models.User, req models.UpdateStudentProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, actor, req)
	res, _ := args.Get(0).(*models.Profile)
	return res, args.Error(1)
}

func (m *ServiceMock) Dashboard(ctx context.Context, actor models.User) (*models.StudentDashboard, error) {
	args := m.Called(ctx, actor)
	res, _ := args.Get(0).(*models.StudentDashboard)
	return res, args.Error(1)
}

func (m *ServiceMock) Statistics(ctx context.Context, actor models.User) (*models.StudentStatistics, error) {
	args := m.Called(ctx, actor)
	res, _ := args.Get(0).(*models.StudentStatistics)
	return res, args.Error(1)
}

const studentID = "6f9619ff-8b86-d011-b42d-00cf4fc964ff"

var student = models.User{ID: studentID, Username: "alice", Role: models.RoleStudent}

func newRequest(method, target, body, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithUser(ctx, &student))
}

func newHandler(svc Service) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
}

func TestGetHandler(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "студент найден",
			id:   studentID,
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, studentID).Return(&models.StudentView{
					Profile:        student.Profile(),
					StudentSummary: models.StudentSummary{TotalEnrollments: 2, TotalReviews: 1, AverageRating: 4},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_enrollments":2`,
		},
		{
			name:           "id не UUID",
			id:             "42",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "не студент",
			id:   studentID,
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, studentID).Return(nil, models.NotFoundError("student", studentID))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			newHandler(svc).Get(w, newRequest(http.MethodGet, "/students/"+tt.id, "", tt.id))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestListHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, models.PageRequest{SortBy: "created_at"}).
		Return(models.NewPage([]models.StudentView{{Profile: student.Profile()}}, models.PageRequest{PageSize: 10}, 1), nil)
	w := httptest.NewRecorder()

	newHandler(svc).List(w, newRequest(http.MethodGet, "/students?sortBy=created_at", "", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	svc.AssertExpectations(t)
}

func TestUpdateProfileHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("UpdateProfile", mock.Anything, student, models.UpdateStudentProfileRequest{Major: "Math"}).
		Return(&models.Profile{ID: studentID, Major: "Math"}, nil)
	w := httptest.NewRecorder()

	newHandler(svc).UpdateProfile(w, newRequest(http.MethodPut, "/students/profile", `{"major":"Math"}`, ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"major":"Math"`)
	svc.AssertExpectations(t)
}

func TestUpdateProfileHandler_EmptyMajor(t *testing.T) {
	svc := new(ServiceMock)
	w := httptest.NewRecorder()

	newHandler(svc).UpdateProfile(w, newRequest(http.MethodPut, "/students/profile", `{"major":""}`, ""))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatisticsHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Statistics", mock.Anything, student).Return(&models.StudentStatistics{
		StudentSummary:          models.StudentSummary{TotalEnrollments: 0},
		GivenRatingDistribution: map[int]int{},
		MostEnrolledLevel:       models.NotAvailable,
	}, nil)
	w := httptest.NewRecorder()

	newHandler(svc).Statistics(w, newRequest(http.MethodGet, "/students/statistics", "", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"most_enrolled_level":"N/A"`)
	assert.Contains(t, w.Body.String(), `"favourite_instructor":null`)
}

func TestDashboardAndProfileHandlers(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything, student).Return(&models.StudentDashboard{
		EnrolledCourses: []models.Course{{ID: 1}},
		RecentReviews:   []models.Review{},
	}, nil)
	svc.On("Profile", mock.Anything, student).Return(&models.Profile{ID: studentID, Username: "alice"}, nil)
	h := newHandler(svc)

	w := httptest.NewRecorder()
	h.Dashboard(w, newRequest(http.MethodGet, "/students/dashboard", "", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enrolled_courses":[{"id":1`)

	w = httptest.NewRecorder()
	h.Profile(w, newRequest(http.MethodGet, "/students/profile", "", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	svc.AssertExpectations(t)
}
