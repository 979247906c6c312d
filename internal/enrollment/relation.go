// Package enrollment реализует отношение «студент записан на курс».
//
// Отношение хранится как множество пар (studentID, courseID) с двумя индексами:
// по студенту и по курсу. Любое изменение затрагивает оба индекса в одном вызове,
// поэтому представления «курсы студента» и «студенты курса» не расходятся.
package enrollment

import (
	"fmt"
	"sort"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Pair - одна запись на курс.
type Pair struct {
	StudentID string
	CourseID  int64
}

// Relation - множество записей на курсы. Нулевое значение не готово к работе,
// используйте NewRelation. Relation не потокобезопасен: синхронизацию
// обеспечивает владелец (хранилище).
type Relation struct {
	byStudent map[string]map[int64]struct{}
	byCourse  map[int64]map[string]struct{}
}

// NewRelation создаёт пустое отношение.
func NewRelation() *Relation {
	return &Relation{
		byStudent: make(map[string]map[int64]struct{}),
		byCourse:  make(map[int64]map[string]struct{}),
	}
}

// Enroll добавляет пару в оба индекса.
// Возвращает ErrAlreadyEnrolled, если пара уже есть; в этом случае отношение не меняется.
func (r *Relation) Enroll(studentID string, courseID int64) error {
	const op = "enrollment.Enroll"
	if r.IsEnrolled(studentID, courseID) {
		return fmt.Errorf("%s: %w", op, models.ErrAlreadyEnrolled)
	}

	courses, ok := r.byStudent[studentID]
	if !ok {
		courses = make(map[int64]struct{})
		r.byStudent[studentID] = courses
	}
	students, ok := r.byCourse[courseID]
	if !ok {
		students = make(map[string]struct{})
		r.byCourse[courseID] = students
	}
	courses[courseID] = struct{}{}
	students[studentID] = struct{}{}
	return nil
}

// Unenroll удаляет пару из обоих индексов.
// Возвращает ErrNotEnrolled, если пары нет.
func (r *Relation) Unenroll(studentID string, courseID int64) error {
	const op = "enrollment.Unenroll"
	if !r.IsEnrolled(studentID, courseID) {
		return fmt.Errorf("%s: %w", op, models.ErrNotEnrolled)
	}

	delete(r.byStudent[studentID], courseID)
	if len(r.byStudent[studentID]) == 0 {
		delete(r.byStudent, studentID)
	}
	delete(r.byCourse[courseID], studentID)
	if len(r.byCourse[courseID]) == 0 {
		delete(r.byCourse, courseID)
	}
	return nil
}

// IsEnrolled сообщает, записан ли студент на курс.
func (r *Relation) IsEnrolled(studentID string, courseID int64) bool {
	_, ok := r.byStudent[studentID][courseID]
	return ok
}

// CoursesOf возвращает идентификаторы курсов студента по возрастанию.
func (r *Relation) CoursesOf(studentID string) []int64 {
	ids := make([]int64, 0, len(r.byStudent[studentID]))
	for id := range r.byStudent[studentID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// StudentsOf возвращает идентификаторы студентов курса в лексикографическом порядке.
func (r *Relation) StudentsOf(courseID int64) []string {
	ids := make([]string, 0, len(r.byCourse[courseID]))
	for id := range r.byCourse[courseID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CountStudents возвращает число студентов, записанных на курс.
func (r *Relation) CountStudents(courseID int64) int {
	return len(r.byCourse[courseID])
}

// RemoveCourse удаляет все записи на курс (при удалении курса).
func (r *Relation) RemoveCourse(courseID int64) {
	for studentID := range r.byCourse[courseID] {
		delete(r.byStudent[studentID], courseID)
		if len(r.byStudent[studentID]) == 0 {
			delete(r.byStudent, studentID)
		}
	}
	delete(r.byCourse, courseID)
}

// Len возвращает общее число записей.
func (r *Relation) Len() int {
	n := 0
	for _, courses := range r.byStudent {
		n += len(courses)
	}
	return n
}
