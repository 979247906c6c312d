package memory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// sortSlice сортирует по by в направлении dir, равные элементы упорядочиваются
// по tie всегда по возрастанию, чтобы страницы не пересекались.
func sortSlice[T any](list []T, dir string, by, tie func(a, b T) int) {
	slices.SortFunc(list, func(a, b T) int {
		c := by(a, b)
		if dir == "desc" {
			c = -c
		}
		if c != 0 {
			return c
		}
		return tie(a, b)
	})
}

func paginate[T any](list []T, page models.PageRequest) []T {
	from := page.Offset()
	if from >= len(list) {
		return []T{}
	}
	to := min(from+page.PageSize, len(list))
	return list[from:to]
}

func compareInt64(a, b int64) int { return cmp.Compare(a, b) }

func compareTime(a, b time.Time) int { return a.Compare(b) }

func levelRank(l models.Level) int {
	if i := slices.Index(models.Levels, l); i >= 0 {
		return i
	}
	return len(models.Levels)
}

func courseComparator(field string) func(a, b models.Course) int {
	switch field {
	case "name":
		return func(a, b models.Course) int { return strings.Compare(a.Name, b.Name) }
	case "price":
		return func(a, b models.Course) int { return cmp.Compare(a.Price, b.Price) }
	case "duration":
		return func(a, b models.Course) int { return cmp.Compare(a.Duration, b.Duration) }
	case "level":
		return func(a, b models.Course) int { return cmp.Compare(levelRank(a.Level), levelRank(b.Level)) }
	case "created_at":
		return func(a, b models.Course) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	default:
		return func(a, b models.Course) int { return compareInt64(a.ID, b.ID) }
	}
}

func reviewComparator(field string) func(a, b models.Review) int {
	switch field {
	case "rating":
		return func(a, b models.Review) int { return cmp.Compare(a.Rating, b.Rating) }
	case "created_at":
		return func(a, b models.Review) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	case "updated_at":
		return func(a, b models.Review) int { return compareTime(a.UpdatedAt, b.UpdatedAt) }
	default:
		return func(a, b models.Review) int { return compareInt64(a.ID, b.ID) }
	}
}
