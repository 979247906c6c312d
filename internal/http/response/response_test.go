package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"not found", models.NotFoundError("course", 5), http.StatusNotFound, "not found"},
		{"forbidden", fmt.Errorf("course.Update: %w", models.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"already enrolled", models.ErrAlreadyEnrolled, http.StatusConflict, models.ErrAlreadyEnrolled.Error()},
		{"not enrolled", models.ErrNotEnrolled, http.StatusConflict, models.ErrNotEnrolled.Error()},
		{"duplicate review", models.ErrDuplicateReview, http.StatusConflict, models.ErrDuplicateReview.Error()},
		{"username taken", models.ErrUsernameTaken, http.StatusConflict, models.ErrUsernameTaken.Error()},
		{"invalid rating", models.ValidateRating(7), http.StatusUnprocessableEntity, models.ErrInvalidRating.Error()},
		{"invalid input", models.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid input"},
		{"bad credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthorized", models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"http error", &HTTPError{Code: http.StatusBadRequest, Msg: "invalid id"}, http.StatusBadRequest, "invalid id"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := FromError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestWriteError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(w, r, log, models.NotFoundError("review", 1))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"not found"}`, w.Body.String())
}

func TestValidationError(t *testing.T) {
	type request struct {
		Name  string `validate:"required"`
		Level string `validate:"oneof=BEGINNER ADVANCED"`
		Price int    `validate:"gt=0"`
	}
	err := validator.New().Struct(request{Level: "X"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	resp := ValidationError(verrs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
	assert.Contains(t, resp.Error, "field Level must be one of [BEGINNER ADVANCED]")
	assert.Contains(t, resp.Error, "field Price must be greater than 0")
}
