package models_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   models.PageRequest
		want models.PageRequest
	}{
		{
			name: "defaults",
			in:   models.PageRequest{},
			want: models.PageRequest{PageNo: 0, PageSize: models.DefaultPageSize, SortBy: "id", SortDir: "asc"},
		},
		{
			name: "negative page and huge size",
			in:   models.PageRequest{PageNo: -3, PageSize: 1000, SortBy: "name", SortDir: "DESC"},
			want: models.PageRequest{PageNo: 0, PageSize: models.MaxPageSize, SortBy: "name", SortDir: "desc"},
		},
		{
			name: "unknown direction falls back to asc",
			in:   models.PageRequest{PageNo: 2, PageSize: 5, SortBy: "price", SortDir: "sideways"},
			want: models.PageRequest{PageNo: 2, PageSize: 5, SortBy: "price", SortDir: "asc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize("id"))
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, models.PageRequest{PageNo: 0, PageSize: 10}.Offset())
	assert.Equal(t, 30, models.PageRequest{PageNo: 3, PageSize: 10}.Offset())
}

func TestPageRequest_CheckSort(t *testing.T) {
	assert.NoError(t, models.PageRequest{SortBy: "price"}.CheckSort(models.CourseSortFields))

	err := models.PageRequest{SortBy: "password"}.CheckSort(models.UserSortFields)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		content   []int
		req       models.PageRequest
		total     int
		wantPages int
		wantLast  bool
	}{
		{name: "empty", content: nil, req: models.PageRequest{PageSize: 10}, total: 0, wantPages: 0, wantLast: true},
		{name: "first of three", content: []int{1, 2}, req: models.PageRequest{PageSize: 2}, total: 5, wantPages: 3, wantLast: false},
		{name: "last partial", content: []int{5}, req: models.PageRequest{PageNo: 2, PageSize: 2}, total: 5, wantPages: 3, wantLast: true},
		{name: "beyond last", content: nil, req: models.PageRequest{PageNo: 7, PageSize: 2}, total: 5, wantPages: 3, wantLast: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewPage(tt.content, tt.req, tt.total)

			require.NotNil(t, p.Content)
			assert.Equal(t, tt.total, p.TotalElements)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantLast, p.Last)
			assert.Equal(t, tt.req.PageNo, p.PageNo)
		})
	}
}

func TestMapPage(t *testing.T) {
	src := models.NewPage([]int{1, 2}, models.PageRequest{PageNo: 1, PageSize: 2}, 6)

	got := models.MapPage(src, strconv.Itoa)

	assert.Equal(t, []string{"1", "2"}, got.Content)
	assert.Equal(t, src.TotalElements, got.TotalElements)
	assert.Equal(t, src.TotalPages, got.TotalPages)
	assert.Equal(t, src.PageNo, got.PageNo)
	assert.False(t, got.Last)
}
