package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// EnrollmentCreateRequest describes the payload for enrolling in a course.
type EnrollmentCreateRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// EnrollmentResponse is the serialized enrollment representation.
type EnrollmentResponse struct {
	ID               uint      `json:"id"`
	UserID           uint      `json:"user_id"`
	CourseID         uint      `json:"course_id"`
	Progress         float64   `json:"progress"`
	LessonProgress   float64   `json:"lesson_progress"`
	Status           string    `json:"status"`
	CompletedLessons []uint    `json:"completed_lessons"`
	CurrentLessonID  *uint     `json:"current_lesson_id"`
	EnrolledAt       time.Time `json:"enrolled_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:              model.ID,
		UserID:          model.UserID,
		CourseID:        model.CourseID,
		Progress:        model.Progress,
		LessonProgress:  model.LessonProgress,
		Status:          model.Status,
		CurrentLessonID: model.CurrentLessonID,
		EnrolledAt:      model.EnrolledAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if len(model.CompletedLessons) > 0 {
		_ = json.Unmarshal(model.CompletedLessons, &response.CompletedLessons)
	}

	return response
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}
	return responses
}
