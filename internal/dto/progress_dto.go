package dto

// CourseProgressResponse is the blended lesson/quiz progress snapshot for a
// user within a course, recomputed after every quiz attempt and lesson
// completion.
type CourseProgressResponse struct {
	UserID           uint    `json:"user_id"`
	CourseID         uint    `json:"course_id"`
	OverallProgress  float64 `json:"overall_progress"`
	LessonProgress   float64 `json:"lesson_progress"`
	QuizProgress     float64 `json:"quiz_progress"`
	CompletedQuizzes int     `json:"completed_quizzes"`
	TotalQuizzes     int     `json:"total_quizzes"`
	Status           string  `json:"status"`
}
