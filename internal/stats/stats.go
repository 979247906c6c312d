// Package stats содержит чистые функции агрегации над уже загруженными курсами
// и отзывами: средние оценки, распределения, самые популярные и высоко оценённые
// курсы, любимый преподаватель студента.
//
// Функции не обращаются к хранилищу и не изменяют входные срезы.
// Ничьи разрешаются детерминированно: курсы предварительно упорядочиваются по
// возрастанию id, и при равенстве побеждает встреченный первым (то есть с меньшим id).
package stats

import (
	"math"
	"sort"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// AverageRating возвращает среднее арифметическое оценок.
// Для пустого набора возвращает 0, а не NaN.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// RatingDistribution группирует отзывы по оценке.
// Распределение разреженное: оценки без отзывов в карте отсутствуют.
func RatingDistribution(reviews []models.Review) map[int]int {
	dist := make(map[int]int)
	for _, r := range reviews {
		dist[r.Rating]++
	}
	return dist
}

// Round1 округляет до одного знака после запятой, половины - от нуля.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// InstructorSummary считает сводку по курсам преподавателя.
//
// Курсы других преподавателей игнорируются. Средняя оценка считается по
// объединению всех отзывов (взвешенно по числу отзывов), а не как среднее средних.
func InstructorSummary(instructorID string, courses []models.Course, reviewsByCourse map[int64][]models.Review) models.InstructorSummary {
	var (
		summary models.InstructorSummary
		all     []models.Review
	)
	for _, c := range courses {
		if c.InstructorID != instructorID {
			continue
		}
		summary.TotalCourses++
		summary.TotalStudents += c.EnrolledCount
		all = append(all, reviewsByCourse[c.ID]...)
	}
	summary.TotalReviews = len(all)
	summary.AverageRating = Round1(AverageRating(all))
	return summary
}

// CourseAverages возвращает среднюю оценку каждого курса, у которого есть отзывы.
// Курсы без отзывов в результат не попадают: их средняя не определена.
func CourseAverages(reviewsByCourse map[int64][]models.Review) map[int64]float64 {
	avg := make(map[int64]float64, len(reviewsByCourse))
	for id, reviews := range reviewsByCourse {
		if len(reviews) == 0 {
			continue
		}
		avg[id] = AverageRating(reviews)
	}
	return avg
}

// MostPopularCourse возвращает курс с наибольшим числом записей.
// Для пустого списка возвращает false.
func MostPopularCourse(courses []models.Course) (models.Course, bool) {
	var (
		best  models.Course
		found bool
	)
	for _, c := range byID(courses) {
		if !found || c.EnrolledCount > best.EnrolledCount {
			best, found = c, true
		}
	}
	return best, found
}

// HighestRatedCourse возвращает курс со строго наибольшей средней оценкой.
// Учитываются только курсы, присутствующие в perCourseAverage (то есть с отзывами);
// равная оценка не вытесняет уже найденный курс.
func HighestRatedCourse(courses []models.Course, perCourseAverage map[int64]float64) (models.Course, bool) {
	var (
		best      models.Course
		bestScore float64
		found     bool
	)
	for _, c := range byID(courses) {
		avg, ok := perCourseAverage[c.ID]
		if !ok {
			continue
		}
		if !found || avg > bestScore {
			best, bestScore, found = c, avg, true
		}
	}
	return best, found
}

// Student - результат агрегации по студенту.
type Student struct {
	Summary               models.StudentSummary
	GivenDistribution     map[int]int
	MostEnrolledLevel     string
	FavouriteInstructorID string // пусто, если записей нет
}

// StudentSummary считает статистику студента по курсам, на которые он записан,
// и отзывам, которые он оставил.
func StudentSummary(enrolled []models.Course, reviews []models.Review) Student {
	return Student{
		Summary: models.StudentSummary{
			TotalEnrollments: len(enrolled),
			TotalReviews:     len(reviews),
			AverageRating:    AverageRating(reviews),
		},
		GivenDistribution:     RatingDistribution(reviews),
		MostEnrolledLevel:     MostEnrolledLevel(enrolled),
		FavouriteInstructorID: FavouriteInstructor(enrolled),
	}
}

// MostEnrolledLevel возвращает самый частый уровень среди курсов.
// При равенстве побеждает более простой уровень; для пустого списка - "N/A".
func MostEnrolledLevel(courses []models.Course) string {
	if len(courses) == 0 {
		return models.NotAvailable
	}
	counts := make(map[models.Level]int)
	order := append([]models.Level(nil), models.Levels...)
	for _, c := range byID(courses) {
		if _, seen := counts[c.Level]; !seen && !c.Level.Valid() {
			order = append(order, c.Level)
		}
		counts[c.Level]++
	}

	var (
		best      models.Level
		bestCount int
	)
	for _, l := range order {
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return string(best)
}

// FavouriteInstructor возвращает id преподавателя, которому принадлежит
// больше всего курсов из списка. При равенстве побеждает преподаватель курса
// с меньшим id; для пустого списка - пустая строка.
func FavouriteInstructor(courses []models.Course) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range byID(courses) {
		if _, seen := counts[c.InstructorID]; !seen {
			order = append(order, c.InstructorID)
		}
		counts[c.InstructorID]++
	}

	var (
		best      string
		bestCount int
	)
	for _, id := range order {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best
}

// LatestReviews возвращает до n последних отзывов (по времени создания).
func LatestReviews(reviews []models.Review, n int) []models.Review {
	out := make([]models.Review, len(reviews))
	copy(out, reviews)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// LatestCourses возвращает до n курсов с наибольшими id.
func LatestCourses(courses []models.Course, n int) []models.Course {
	out := make([]models.Course, len(courses))
	copy(out, courses)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func byID(courses []models.Course) []models.Course {
	out := append([]models.Course(nil), courses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
