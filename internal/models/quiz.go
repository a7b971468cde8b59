package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionType is the closed set of supported question kinds.
type QuestionType string

const (
	// QuestionTypeMultipleChoice compares the answer against a single correct option.
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	// QuestionTypeTrueFalse compares the answer against a boolean literal.
	QuestionTypeTrueFalse QuestionType = "true_false"
	// QuestionTypeCoding checks submitted code against expected-output test cases.
	QuestionTypeCoding QuestionType = "coding"
)

// Valid reports whether the type is one of the supported kinds.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeCoding:
		return true
	default:
		return false
	}
}

// Quiz is an assessment attached to a course. Updating a quiz replaces its
// question set wholesale; attempts recorded against the old questions are
// kept as-is and never revalidated.
type Quiz struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CourseID     uint       `gorm:"not null;index" json:"course_id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	PassingScore float64    `gorm:"not null" json:"passing_score"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Questions    []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// Question belongs to exactly one quiz and is immutable once published.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	QuizID        uint           `gorm:"not null;index" json:"quiz_id"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Type          QuestionType   `gorm:"size:32;not null" json:"type"`
	Options       datatypes.JSON `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text" json:"correct_answer,omitempty"`
	CodeTemplate  string         `gorm:"type:text" json:"code_template,omitempty"`
	TestCases     datatypes.JSON `gorm:"type:json" json:"test_cases,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TestCase is one input/expected-output pair for a coding question. The
// expected output is matched as a case-insensitive substring of the submitted
// answer; there is no sandboxed execution.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}
