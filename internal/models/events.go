package models

import "time"

// Ключи маршрутизации доменных событий.
const (
	EventEnrollmentCreated = "enrollment.created"
	EventReviewCreated     = "review.created"
)

// EnrollmentEvent публикуется после успешной записи студента на курс.
type EnrollmentEvent struct {
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	CourseID        int64     `json:"course_id"`
	CourseName      string    `json:"course_name"`
	InstructorID    string    `json:"instructor_id"`
	InstructorEmail string    `json:"instructor_email,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ReviewEvent публикуется после создания отзыва.
type ReviewEvent struct {
	ReviewID        int64     `json:"review_id"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment,omitempty"`
	StudentName     string    `json:"student_name"`
	CourseID        int64     `json:"course_id"`
	CourseName      string    `json:"course_name"`
	InstructorID    string    `json:"instructor_id"`
	InstructorEmail string    `json:"instructor_email,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
