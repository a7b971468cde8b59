package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outcome tags for per-question attempt results.
const (
	ResultCorrect    = "correct"
	ResultIncorrect  = "incorrect"
	ResultPassed     = "passed"
	ResultFailed     = "failed"
	ResultUnanswered = "unanswered"
)

// QuizAttempt is one graded submission of answers to a quiz. Attempts are
// append-only: created exactly once per submission and never mutated.
type QuizAttempt struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Reference     string         `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID        uint           `gorm:"not null;index:idx_quiz_attempt_user_quiz" json:"user_id"`
	QuizID        uint           `gorm:"not null;index:idx_quiz_attempt_user_quiz" json:"quiz_id"`
	AttemptNumber int            `gorm:"not null" json:"attempt_number"`
	Score         float64        `gorm:"not null" json:"score"`
	Passed        bool           `gorm:"not null" json:"passed"`
	Results       datatypes.JSON `gorm:"type:json" json:"results"`
	CompletedAt   time.Time      `gorm:"not null" json:"completed_at"`
}

// QuestionResult captures the graded outcome for a single question within an
// attempt. Details carries the per-test-case breakdown for coding questions.
type QuestionResult struct {
	QuestionID uint             `json:"question_id"`
	Type       QuestionType     `json:"type"`
	Result     string           `json:"result"`
	Details    []TestCaseResult `json:"details,omitempty"`
}

// TestCaseResult records the evaluation of one coding test case.
type TestCaseResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Passed   bool   `json:"passed"`
}

// AttemptCounter is the per-(user, quiz) sequence backing attempt numbering.
// Incremented with a single conditional upsert so concurrent submissions for
// the same pair cannot both observe the same prior value.
type AttemptCounter struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	QuizID    uint      `gorm:"primaryKey;autoIncrement:false" json:"quiz_id"`
	Value     int       `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
