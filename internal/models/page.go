package models

import (
	"fmt"
	"strings"
)

// PageRequest - параметры постраничной выборки.
type PageRequest struct {
	PageNo   int    // номер страницы с нуля
	PageSize int    // размер страницы
	SortBy   string // поле сортировки, проверяется хранилищем по белому списку
	SortDir  string // asc или desc
}

const (
	// DefaultPageSize - размер страницы по умолчанию.
	DefaultPageSize = 10
	// MaxPageSize ограничивает размер страницы сверху.
	MaxPageSize = 100
)

// Normalize приводит параметры к допустимым значениям.
func (p PageRequest) Normalize(defaultSort string) PageRequest {
	if p.PageNo < 0 {
		p.PageNo = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.SortBy == "" {
		p.SortBy = defaultSort
	}
	if strings.EqualFold(p.SortDir, "desc") {
		p.SortDir = "desc"
	} else {
		p.SortDir = "asc"
	}
	return p
}

// Offset возвращает смещение первой записи страницы.
func (p PageRequest) Offset() int {
	return p.PageNo * p.PageSize
}

// Page - страница результатов.
type Page[T any] struct {
	Content       []T  `json:"content"`
	PageNo        int  `json:"page_no"`
	PageSize      int  `json:"page_size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	Last          bool `json:"last"`
}

// NewPage собирает страницу по содержимому и общему числу элементов.
func NewPage[T any](content []T, req PageRequest, total int) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.PageSize > 0 {
		pages = (total + req.PageSize - 1) / req.PageSize
	}
	return Page[T]{
		Content:       content,
		PageNo:        req.PageNo,
		PageSize:      req.PageSize,
		TotalElements: total,
		TotalPages:    pages,
		Last:          req.PageNo >= pages-1,
	}
}

// MapPage преобразует содержимое страницы, сохраняя метаданные.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, fn(v))
	}
	return Page[U]{
		Content:       out,
		PageNo:        p.PageNo,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Last:          p.Last,
	}
}

// Поля, по которым разрешена сортировка.
var (
	CourseSortFields = []string{"id", "name", "price", "duration", "level", "created_at"}
	ReviewSortFields = []string{"id", "rating", "created_at", "updated_at"}
	UserSortFields   = []string{"username", "created_at"}
)

// CheckSort возвращает ErrInvalidInput, если поле сортировки не из списка allowed.
func (p PageRequest) CheckSort(allowed []string) error {
	for _, f := range allowed {
		if p.SortBy == f {
			return nil
		}
	}
	return fmt.Errorf("sort by %q: %w", p.SortBy, ErrInvalidInput)
}
