package course

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

func (m *ServiceMock) Create(ctx context.Context, actor models.User, req models.CourseRequest) (*models.Course, error) {
	args := m.Called(ctx, actor, req)
	res, _ := args.Get(0).(*models.Course)
	return res, args.Error(1)
}

func (m *ServiceMock) Get(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*models.Course)
	return res, args.Error(1)
}

func (m *ServiceMock) List(ctx context.Context, filter models.CourseFilter, page models.PageRequest) (models.Page[models.Course], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(models.Page[models.Course]), args.Error(1)
}

func (m *ServiceMock) ListMine(ctx context.Context, actor models.User) ([]models.Course, error) {
	args := m.Called(ctx, actor)
	res, _ := args.Get(0).([]models.Course)
	return res, args.Error(1)
}

func (m *ServiceMock) Update(ctx context.Context, actor models.User, id int64, req models.CourseRequest) (*models.Course, error) {
	args := m.Called(ctx, actor, id, req)
	res, _ := args.Get(0).(*models.Course)
	return res, args.Error(1)
}

func (m *ServiceMock) Patch(ctx context.Context, actor models.User, id int64, patch models.CoursePatch) (*models.Course, error) {
	args := m.Called(ctx, actor, id, patch)
	res, _ := args.Get(0).(*models.Course)
	return res, args.Error(1)
}

func (m *ServiceMock) Delete(ctx context.Context, actor models.User, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

var instructor = models.User{ID: "ins-1", Username: "bob", Role: models.RoleInstructor}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(method, target, body, id string, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if user != nil {
		ctx = middlewarectx.WithUser(ctx, user)
	}
	return req.WithContext(ctx)
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
			name: "курс найден",
			id:   "7",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, int64(7)).Return(&models.Course{ID: 7, Name: "Go", EnrolledCount: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"enrolled_students_count":2`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid id"`,
		},
		{
			name: "курс не найден",
			id:   "9",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, int64(9)).Return(nil, models.NotFoundError("course", 9))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).Get(w, newRequest(http.MethodGet, "/courses/"+tt.id, "", tt.id, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestListHandler(t *testing.T) {
	svc := new(ServiceMock)
	page := models.PageRequest{PageNo: 1, PageSize: 5, SortBy: "price", SortDir: "desc"}
	filter := models.CourseFilter{Name: "go", Level: models.LevelBeginner}
	svc.On("List", mock.Anything, filter, page).
		Return(models.NewPage([]models.Course{{ID: 1}}, page, 6), nil)
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).List(w, newRequest(http.MethodGet,
		"/courses?name=go&level=beginner&pageNo=1&pageSize=5&sortBy=price&sortDir=desc", "", "", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_pages":2`)
	svc.AssertExpectations(t)
}

func TestCreateHandler(t *testing.T) {
	valid := `{"name":"Go basics","price":10,"duration":12,"level":"BEGINNER"}`

	tests := []struct {
		name           string
		body           string
		user           *models.User
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "курс создан",
			body: valid,
			user: &instructor,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, instructor, models.CourseRequest{
					Name: "Go basics", Price: 10, Duration: 12, Level: models.LevelBeginner,
				}).Return(&models.Course{ID: 3, Name: "Go basics", InstructorID: instructor.ID}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":3`,
		},
		{
			name:           "без пользователя",
			body:           valid,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "отрицательная цена",
			body:           `{"name":"Go basics","price":-1,"duration":12,"level":"BEGINNER"}`,
			user:           &instructor,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Price must be greater than 0",
		},
		{
			name: "студент не может создавать курсы",
			body: valid,
			user: &models.User{ID: "s-1", Role: models.RoleStudent},
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).Create(w, newRequest(http.MethodPost, "/courses", tt.body, "", tt.user))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestPatchHandler_PassesOnlyProvidedFields(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Patch", mock.Anything, instructor, int64(4), mock.MatchedBy(func(p models.CoursePatch) bool {
		return p.Price != nil && *p.Price == 25 && p.Name == nil && p.Level == nil
	})).Return(&models.Course{ID: 4, Price: 25}, nil)
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).Patch(w, newRequest(http.MethodPatch, "/courses/4", `{"price":25}`, "4", &instructor))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdateHandler_ForeignCourse(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Update", mock.Anything, instructor, int64(4), mock.Anything).Return(nil, models.ErrForbidden)
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).Update(w, newRequest(http.MethodPut, "/courses/4",
		`{"name":"Go basics","price":10,"duration":12,"level":"ADVANCED"}`, "4", &instructor))

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}

func TestDeleteHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Delete", mock.Anything, instructor, int64(4)).Return(nil)
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).Delete(w, newRequest(http.MethodDelete, "/courses/4", "", "4", &instructor))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted_id":4`)
	svc.AssertExpectations(t)
}

func TestMyCoursesHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("ListMine", mock.Anything, instructor).Return([]models.Course{{ID: 1}, {ID: 2}}, nil)
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).MyCourses(w, newRequest(http.MethodGet, "/courses/my-courses", "", "", &instructor))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":2`)
	svc.AssertExpectations(t)
}
