// Package models содержит доменные структуры маркетплейса курсов:
// пользователей (студентов и преподавателей), курсы, отзывы и сводные
// статистики, а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Role - роль пользователя. Определяет, какие поля профиля заполнены.
type Role string

const (
	// RoleStudent - студент: записывается на курсы и оставляет отзывы.
	RoleStudent Role = "STUDENT"
	// RoleInstructor - преподаватель: публикует курсы.
	RoleInstructor Role = "INSTRUCTOR"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// User представляет зарегистрированного пользователя системы.
//
// Вместо наследования используется вариант с тегом Role: у студента заполнено
// поле Major, у преподавателя - Specialization.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	Major          string    `json:"major,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsStudent сообщает, что пользователь - студент.
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// IsInstructor сообщает, что пользователь - преподаватель.
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }

// Profile возвращает публичное представление профиля.
func (u *User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		Major:          u.Major,
		Specialization: u.Specialization,
	}
}

// Profile - профиль пользователя без чувствительных данных.
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	Role           Role   `json:"role"`
	Major          string `json:"major,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Password       string `json:"password" validate:"required,min=6"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Role           Role   `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR"`
	Major          string `json:"major,omitempty" validate:"omitempty,max=100"`
	Specialization string `json:"specialization,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest используется для приёма учётных данных из JSON-запроса.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult - результат успешного входа.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
}

// UpdateStudentProfileRequest - изменение профиля студента.
type UpdateStudentProfileRequest struct {
	Major string `json:"major" validate:"required,max=100"`
}

// UpdateInstructorProfileRequest - изменение профиля преподавателя.
type UpdateInstructorProfileRequest struct {
	Specialization string `json:"specialization" validate:"required,max=100"`
}
