// Package request содержит общий разбор входящих HTTP-запросов: JSON-тело
// с валидацией, параметры пути и параметры постраничной выборки.
//
// Ошибки возвращаются как *response.HTTPError с готовым кодом ответа.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// DecodeJSON читает тело запроса в dst и проверяет его тегами validate.
// Некорректный JSON даёт 400, ошибки валидации 422 с перечнем полей.
func DecodeJSON(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &response.HTTPError{Code: http.StatusBadRequest, Msg: "invalid request body", Err: err}
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &response.HTTPError{
				Code: http.StatusUnprocessableEntity,
				Msg:  response.ValidationError(verrs).Error,
				Err:  err,
			}
		}
		return &response.HTTPError{Code: http.StatusBadRequest, Msg: "invalid request body", Err: err}
	}
	return nil
}

// ID разбирает положительный целочисленный параметр пути name.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &response.HTTPError{
			Code: http.StatusBadRequest,
			Msg:  fmt.Sprintf("invalid %s", name),
			Err:  err,
		}
	}
	return id, nil
}

// UserID разбирает параметр пути name как UUID пользователя.
func UserID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", &response.HTTPError{
			Code: http.StatusBadRequest,
			Msg:  fmt.Sprintf("invalid %s", name),
			Err:  err,
		}
	}
	return id.String(), nil
}

// Page читает параметры pageNo, pageSize, sortBy и sortDir из строки запроса.
// Отсутствующие параметры остаются нулевыми и заполняются сервисом.
func Page(r *http.Request) (models.PageRequest, error) {
	q := r.URL.Query()
	var (
		page models.PageRequest
		err  error
	)
	if page.PageNo, err = intParam(q.Get("pageNo")); err != nil {
		return page, &response.HTTPError{Code: http.StatusBadRequest, Msg: "invalid pageNo", Err: err}
	}
	if page.PageSize, err = intParam(q.Get("pageSize")); err != nil {
		return page, &response.HTTPError{Code: http.StatusBadRequest, Msg: "invalid pageSize", Err: err}
	}
	page.SortBy = q.Get("sortBy")
	page.SortDir = q.Get("sortDir")
	return page, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// Actor возвращает пользователя, положенного в контекст JWTMiddleware.
func Actor(r *http.Request) (models.User, error) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		return models.User{}, models.ErrUnauthorized
	}
	return *user, nil
}
