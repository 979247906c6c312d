package models

import "time"

// Level - уровень сложности курса.
type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
)

// Levels перечисляет уровни в порядке возрастания сложности.
// Этот же порядок используется для разрешения ничьих в статистике.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid сообщает, является ли уровень одним из известных.
func (l Level) Valid() bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}

// Course представляет курс, опубликованный преподавателем.
//
// EnrolledCount - производное значение: число записей на курс в момент чтения.
type Course struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Price          float64   `json:"price"`
	Duration       int       `json:"duration"`
	Level          Level     `json:"level"`
	InstructorID   string    `json:"instructor_id"`
	InstructorName string    `json:"instructor_name,omitempty"`
	EnrolledCount  int       `json:"enrolled_students_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// CourseRequest используется для приёма данных курса из JSON-запроса (создание и PUT).
type CourseRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
	Price       float64 `json:"price" validate:"gt=0"`
	Duration    int     `json:"duration" validate:"gt=0"`
	Level       Level   `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
}

// CoursePatch - частичное обновление курса: nil означает «не менять».
type CoursePatch struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Duration    *int     `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Level       *Level   `json:"level,omitempty" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
}

// Apply применяет заданные поля патча к курсу.
func (p CoursePatch) Apply(c *Course) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
}

// CourseFilter - параметры выборки каталога курсов.
type CourseFilter struct {
	Name  string // подстрока названия без учёта регистра, пусто - без фильтра
	Level Level  // пусто - любой уровень
}
