package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

func reviews(ratings ...int) []models.Review {
	out := make([]models.Review, 0, len(ratings))
	for i, r := range ratings {
		out = append(out, models.Review{ID: int64(i + 1), Rating: r})
	}
	return out
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		reviews []models.Review
		want    float64
	}{
		{name: "empty set", reviews: nil, want: 0},
		{name: "two reviews", reviews: reviews(4, 2), want: 3},
		{name: "single review", reviews: reviews(5), want: 5},
		{name: "fractional", reviews: reviews(5, 4, 4), want: 13.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AverageRating(tt.reviews), 1e-9)
		})
	}
}

func TestRatingDistribution_IsSparse(t *testing.T) {
	dist := RatingDistribution(reviews(5, 5, 3))

	assert.Equal(t, map[int]int{5: 2, 3: 1}, dist)
	_, ok := dist[1]
	assert.False(t, ok)
	assert.Empty(t, RatingDistribution(nil))
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{4.25, 4.3},
		{4.24, 4.2},
		{3.0, 3.0},
		{0, 0},
		{-1.25, -1.3},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round1(tt.in), 1e-9, "Round1(%v)", tt.in)
	}
}

func TestInstructorSummary_AveragesOverUnionOfReviews(t *testing.T) {
	courses := []models.Course{
		{ID: 1, InstructorID: "ins", EnrolledCount: 3},
		{ID: 2, InstructorID: "ins", EnrolledCount: 1},
		{ID: 3, InstructorID: "other", EnrolledCount: 10},
	}
	byCourse := map[int64][]models.Review{
		1: reviews(5, 3, 4), // средняя 4.0
		2: reviews(5),       // средняя 5.0
		3: reviews(1, 1),
	}

	got := InstructorSummary("ins", courses, byCourse)

	assert.Equal(t, 2, got.TotalCourses)
	assert.Equal(t, 4, got.TotalStudents)
	assert.Equal(t, 4, got.TotalReviews)
	// 17/4 = 4.25 → 4.3, а не (4.0+5.0)/2 = 4.5
	assert.InDelta(t, 4.3, got.AverageRating, 1e-9)
}

func TestInstructorSummary_CountsEnrollmentsNotUniqueStudents(t *testing.T) {
	courses := []models.Course{
		{ID: 1, InstructorID: "ins", EnrolledCount: 1},
		{ID: 2, InstructorID: "ins", EnrolledCount: 1},
	}

	got := InstructorSummary("ins", courses, nil)

	assert.Equal(t, 2, got.TotalStudents)
	assert.Equal(t, 0.0, got.AverageRating)
}

func TestMostPopularCourse(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := MostPopularCourse(nil)
		assert.False(t, ok)
	})

	t.Run("maximum enrolled count", func(t *testing.T) {
		got, ok := MostPopularCourse([]models.Course{
			{ID: 1, EnrolledCount: 2},
			{ID: 2, EnrolledCount: 7},
			{ID: 3, EnrolledCount: 5},
		})
		require.True(t, ok)
		assert.Equal(t, int64(2), got.ID)
	})

	t.Run("tie resolves to lowest id", func(t *testing.T) {
		got, ok := MostPopularCourse([]models.Course{
			{ID: 9, EnrolledCount: 4},
			{ID: 4, EnrolledCount: 4},
			{ID: 6, EnrolledCount: 1},
		})
		require.True(t, ok)
		assert.Equal(t, int64(4), got.ID)
	})

	t.Run("all without students", func(t *testing.T) {
		got, ok := MostPopularCourse([]models.Course{{ID: 3}, {ID: 2}})
		require.True(t, ok)
		assert.Equal(t, int64(2), got.ID)
	})
}

func TestHighestRatedCourse(t *testing.T) {
	courses := []models.Course{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name     string
		averages map[int64]float64
		wantID   int64
		wantOK   bool
	}{
		{name: "no reviews at all", averages: map[int64]float64{}, wantOK: false},
		{name: "strict maximum", averages: map[int64]float64{1: 3.5, 2: 4.8, 3: 4.1}, wantID: 2, wantOK: true},
		{name: "equal average keeps first", averages: map[int64]float64{2: 4.5, 3: 4.5}, wantID: 2, wantOK: true},
		{name: "unreviewed course excluded even if others are low", averages: map[int64]float64{3: 1.0}, wantID: 3, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HighestRatedCourse(courses, tt.averages)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}

	_, ok := HighestRatedCourse(nil, map[int64]float64{1: 5})
	assert.False(t, ok)
}

func TestCourseAverages_SkipsEmpty(t *testing.T) {
	got := CourseAverages(map[int64][]models.Review{
		1: reviews(4, 2),
		2: {},
	})

	assert.Equal(t, map[int64]float64{1: 3}, got)
}

func TestStudentSummary(t *testing.T) {
	enrolled := []models.Course{
		{ID: 3, Level: models.LevelAdvanced, InstructorID: "bob"},
		{ID: 1, Level: models.LevelBeginner, InstructorID: "ann"},
		{ID: 2, Level: models.LevelAdvanced, InstructorID: "bob"},
	}
	given := reviews(5, 4)

	got := StudentSummary(enrolled, given)

	assert.Equal(t, 3, got.Summary.TotalEnrollments)
	assert.Equal(t, 2, got.Summary.TotalReviews)
	assert.InDelta(t, 4.5, got.Summary.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{5: 1, 4: 1}, got.GivenDistribution)
	assert.Equal(t, string(models.LevelAdvanced), got.MostEnrolledLevel)
	assert.Equal(t, "bob", got.FavouriteInstructorID)
}

func TestStudentSummary_NoEnrollments(t *testing.T) {
	got := StudentSummary(nil, nil)

	assert.Equal(t, models.NotAvailable, got.MostEnrolledLevel)
	assert.Empty(t, got.FavouriteInstructorID)
	assert.Equal(t, 0.0, got.Summary.AverageRating)
}

func TestMostEnrolledLevel_TieResolvesToSimplerLevel(t *testing.T) {
	got := MostEnrolledLevel([]models.Course{
		{ID: 1, Level: models.LevelAdvanced},
		{ID: 2, Level: models.LevelIntermediate},
	})

	assert.Equal(t, string(models.LevelIntermediate), got)
}

func TestFavouriteInstructor_TieResolvesToLowestCourseID(t *testing.T) {
	got := FavouriteInstructor([]models.Course{
		{ID: 5, InstructorID: "zed"},
		{ID: 2, InstructorID: "amy"},
		{ID: 7, InstructorID: "zed"},
		{ID: 3, InstructorID: "amy"},
	})

	assert.Equal(t, "amy", got)
}

func TestLatestReviews(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []models.Review{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	}

	got := LatestReviews(in, 2)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, int64(1), in[0].ID, "input must not be reordered")
	assert.NotNil(t, LatestReviews(nil, 5))
}

func TestLatestCourses(t *testing.T) {
	got := LatestCourses([]models.Course{{ID: 1}, {ID: 7}, {ID: 3}}, 5)

	require.Len(t, got, 3)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, int64(1), got[2].ID)
}
