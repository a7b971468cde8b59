package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// QuestionCreateRequest describes one question inside a quiz payload.
type QuestionCreateRequest struct {
	Text          string            `json:"text" validate:"required"`
	Type          string            `json:"type" validate:"required,oneof=multiple_choice true_false coding"`
	Options       []string          `json:"options" validate:"omitempty,min=2"`
	CorrectAnswer string            `json:"correct_answer"`
	CodeTemplate  string            `json:"code_template"`
	TestCases     []models.TestCase `json:"test_cases" validate:"omitempty,dive"`
}

// QuizCreateRequest describes the payload for creating or replacing a quiz.
// Replacing deletes and re-inserts the whole question set.
type QuizCreateRequest struct {
	CourseID     uint                    `json:"course_id" validate:"required"`
	Title        string                  `json:"title" validate:"required,max=200"`
	Description  string                  `json:"description"`
	PassingScore float64                 `json:"passing_score" validate:"gte=0,lte=100"`
	Questions    []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuizResponse is the serialized quiz representation returned to clients.
type QuizResponse struct {
	ID             uint      `json:"id"`
	CourseID       uint      `json:"course_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	PassingScore   float64   `json:"passing_score"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewQuizResponse converts a model into a DTO.
func NewQuizResponse(model models.Quiz) QuizResponse {
	return QuizResponse{
		ID:             model.ID,
		CourseID:       model.CourseID,
		Title:          model.Title,
		Description:    model.Description,
		PassingScore:   model.PassingScore,
		TotalQuestions: len(model.Questions),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewQuizResponseSlice converts a slice of models into DTOs.
func NewQuizResponseSlice(quizzes []models.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, NewQuizResponse(quiz))
	}
	return responses
}

// QuestionResponse is a question as shown to clients. Answer material is
// stripped for students before it leaves the service.
type QuestionResponse struct {
	ID            uint              `json:"id"`
	QuizID        uint              `json:"quiz_id"`
	Text          string            `json:"text"`
	Type          string            `json:"type"`
	Options       []string          `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	CodeTemplate  string            `json:"code_template,omitempty"`
	TestCases     []models.TestCase `json:"test_cases,omitempty"`
}

// NewQuestionResponse converts a question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:            model.ID,
		QuizID:        model.QuizID,
		Text:          model.Text,
		Type:          string(model.Type),
		CorrectAnswer: model.CorrectAnswer,
		CodeTemplate:  model.CodeTemplate,
	}

	if len(model.Options) > 0 {
		_ = json.Unmarshal(model.Options, &response.Options)
	}
	if len(model.TestCases) > 0 {
		_ = json.Unmarshal(model.TestCases, &response.TestCases)
	}

	return response
}

// QuizQuestionsResponse bundles the questions of one quiz.
type QuizQuestionsResponse struct {
	QuizID         uint               `json:"quiz_id"`
	QuizTitle      string             `json:"quiz_title"`
	TotalQuestions int                `json:"total_questions"`
	Questions      []QuestionResponse `json:"questions"`
}

// EncodeOptions serializes question options for storage.
func EncodeOptions(options []string) datatypes.JSON {
	if len(options) == 0 {
		return nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// EncodeTestCases serializes coding test cases for storage.
func EncodeTestCases(cases []models.TestCase) datatypes.JSON {
	if len(cases) == 0 {
		return nil
	}
	raw, err := json.Marshal(cases)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
