package models

// NotAvailable - значение mostEnrolledLevel для студента без записей.
const NotAvailable = "N/A"

// InstructorSummary - сводка по преподавателю.
//
// TotalStudents - сумма записей по всем курсам: студент, записанный на два курса
// преподавателя, учитывается дважды.
type InstructorSummary struct {
	TotalCourses  int     `json:"total_courses"`
	TotalStudents int     `json:"total_students"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

// InstructorView - преподаватель вместе со сводкой.
type InstructorView struct {
	Profile
	InstructorSummary
}

// InstructorStatistics - расширенная статистика преподавателя.
type InstructorStatistics struct {
	InstructorSummary
	RatingDistribution map[int]int `json:"rating_distribution"`
	MostPopularCourse  *Course     `json:"most_popular_course"`
	HighestRatedCourse *Course     `json:"highest_rated_course"`
}

// InstructorDashboard - данные главной страницы преподавателя.
type InstructorDashboard struct {
	InstructorSummary
	RecentCourses []Course `json:"recent_courses"`
	RecentReviews []Review `json:"recent_reviews"`
}

// StudentSummary - сводка по студенту.
type StudentSummary struct {
	TotalEnrollments int     `json:"total_enrollments"`
	TotalReviews     int     `json:"total_reviews"`
	AverageRating    float64 `json:"average_rating"`
}

// StudentView - студент вместе со сводкой.
type StudentView struct {
	Profile
	StudentSummary
}

// StudentStatistics - расширенная статистика студента.
type StudentStatistics struct {
	StudentSummary
	GivenRatingDistribution map[int]int     `json:"given_rating_distribution"`
	MostEnrolledLevel       string          `json:"most_enrolled_level"`
	FavouriteInstructor     *Profile        `json:"favourite_instructor"`
}

// StudentDashboard - данные главной страницы студента.
type StudentDashboard struct {
	StudentSummary
	EnrolledCourses []Course `json:"enrolled_courses"`
	RecentReviews   []Review `json:"recent_reviews"`
}
