package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		checks         map[string]Pinger
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "без зависимостей",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"checks":{},"status":"ok"}}`,
		},
		{
			name:           "все зависимости доступны",
			checks:         map[string]Pinger{"storage": ok, "cache": ok},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"checks":{"cache":"ok","storage":"ok"},"status":"ok"}}`,
		},
		{
			name:           "кэш недоступен",
			checks:         map[string]Pinger{"storage": ok, "cache": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"Error","error":"service unavailable","data":{"checks":{"cache":"unavailable","storage":"ok"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), tt.checks)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
