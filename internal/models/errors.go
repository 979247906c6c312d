package models

import (
	"errors"
	"fmt"
)

// Виды доменных ошибок. Проверяются через errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrDuplicateReview    = errors.New("course already reviewed by this student")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidComment     = errors.New("comment is too long")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError возвращает ErrNotFound с указанием сущности и идентификатора.
func NotFoundError(entity string, id any) error {
	return fmt.Errorf("%s with id %v: %w", entity, id, ErrNotFound)
}

// ValidateRating проверяет, что оценка лежит в диапазоне [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("rating %d: %w", rating, ErrInvalidRating)
	}
	return nil
}

// ValidateComment проверяет длину комментария (в символах, не байтах).
func ValidateComment(comment string) error {
	if len([]rune(comment)) > MaxCommentLength {
		return fmt.Errorf("comment of %d characters: %w", len([]rune(comment)), ErrInvalidComment)
	}
	return nil
}
