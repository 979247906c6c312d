package models

import "time"

const (
	// MinRating и MaxRating задают допустимый диапазон оценки.
	MinRating = 1
	MaxRating = 5
	// MaxCommentLength - максимальная длина комментария в символах.
	MaxCommentLength = 500
)

// Review - отзыв студента о курсе.
type Review struct {
	ID          int64     `json:"id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	CourseID    int64     `json:"course_id"`
	CourseName  string    `json:"course_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReviewCreateRequest используется для приёма нового отзыва из JSON-запроса.
//
// Диапазон оценки проверяется ещё и в сервисе: запрос может прийти не только по HTTP.
type ReviewCreateRequest struct {
	CourseID int64  `json:"course_id" validate:"required,gt=0"`
	Rating   int    `json:"rating" validate:"required"`
	Comment  string `json:"comment,omitempty"`
}

// ReviewUpdateRequest - изменение оценки и комментария.
type ReviewUpdateRequest struct {
	Rating  int    `json:"rating" validate:"required"`
	Comment string `json:"comment,omitempty"`
}
