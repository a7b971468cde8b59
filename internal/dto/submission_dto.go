package dto

import (
	"time"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// TextSubmissionRequest carries a free-text assignment answer.
type TextSubmissionRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// LinkSubmissionRequest carries a URL assignment answer.
type LinkSubmissionRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// SubmissionResponse is the serialized submission representation.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	AssignmentID uint       `json:"assignment_id"`
	Kind         string     `json:"kind"`
	Content      string     `json:"content,omitempty"`
	FileURL      string     `json:"file_url,omitempty"`
	Grade        *float64   `json:"grade"`
	Feedback     string     `json:"feedback,omitempty"`
	GradedAt     *time.Time `json:"graded_at"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		AssignmentID: model.AssignmentID,
		Kind:         model.Kind,
		Content:      model.Content,
		FileURL:      model.FileURL,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		GradedAt:     model.GradedAt,
		SubmittedAt:  model.SubmittedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// EligibilityResponse reports whether a submission attempt may proceed.
type EligibilityResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
