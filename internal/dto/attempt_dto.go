package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// QuizSubmissionRequest carries the learner's answers keyed by question id.
type QuizSubmissionRequest struct {
	Answers map[uint]string `json:"answers" validate:"required,min=1"`
}

// QuizAttemptResponse is the graded outcome of one quiz submission.
type QuizAttemptResponse struct {
	Reference     string                  `json:"reference"`
	UserID        uint                    `json:"user_id"`
	QuizID        uint                    `json:"quiz_id"`
	AttemptNumber int                     `json:"attempt_number"`
	Score         float64                 `json:"score"`
	Passed        bool                    `json:"passed"`
	Results       []models.QuestionResult `json:"results"`
	CompletedAt   time.Time               `json:"completed_at"`
	Progress      *CourseProgressResponse `json:"progress,omitempty"`
}

// NewQuizAttemptResponse converts an attempt model into a DTO.
func NewQuizAttemptResponse(model models.QuizAttempt) QuizAttemptResponse {
	response := QuizAttemptResponse{
		Reference:     model.Reference,
		UserID:        model.UserID,
		QuizID:        model.QuizID,
		AttemptNumber: model.AttemptNumber,
		Score:         model.Score,
		Passed:        model.Passed,
		CompletedAt:   model.CompletedAt,
	}

	if len(model.Results) > 0 {
		_ = json.Unmarshal(model.Results, &response.Results)
	}

	return response
}

// NewQuizAttemptResponseSlice converts a slice of attempts into DTOs.
func NewQuizAttemptResponseSlice(attempts []models.QuizAttempt) []QuizAttemptResponse {
	responses := make([]QuizAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, NewQuizAttemptResponse(attempt))
	}
	return responses
}

// QuizStatsSummary aggregates a user's attempt history.
type QuizStatsSummary struct {
	TotalAttempts         int     `json:"total_attempts"`
	TotalQuizzesAttempted int     `json:"total_quizzes_attempted"`
	AverageScore          float64 `json:"average_score"`
	PassRate              float64 `json:"pass_rate"`
}

// UserQuizHistoryResponse bundles a user's attempts with summary stats.
type UserQuizHistoryResponse struct {
	UserID   uint                  `json:"user_id"`
	Summary  QuizStatsSummary      `json:"summary"`
	Attempts []QuizAttemptResponse `json:"attempts"`
}
