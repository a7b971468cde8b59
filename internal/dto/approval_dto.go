package dto

import (
	"time"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// LateApprovalCreateRequest describes an administrative late-submission
// approval. Creating one supersedes any prior approval for the pair.
type LateApprovalCreateRequest struct {
	UserID        uint   `json:"user_id" validate:"required"`
	ApprovedUntil string `json:"approved_until" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// LateApprovalResponse is the serialized approval representation.
type LateApprovalResponse struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	AssignmentID  uint      `json:"assignment_id"`
	ApprovedUntil time.Time `json:"approved_until"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewLateApprovalResponse converts a model into a DTO.
func NewLateApprovalResponse(model models.LateApproval) LateApprovalResponse {
	return LateApprovalResponse{
		ID:            model.ID,
		UserID:        model.UserID,
		AssignmentID:  model.AssignmentID,
		ApprovedUntil: model.ApprovedUntil,
		CreatedAt:     model.CreatedAt,
	}
}

// ExtensionRequestCreateRequest describes a learner's ask for more time.
type ExtensionRequestCreateRequest struct {
	RequestedUntil string `json:"requested_until" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Reason         string `json:"reason" validate:"required,min=5"`
}

// ExtensionRequestUpdateRequest updates only the request status.
type ExtensionRequestUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ExtensionRequestResponse is the serialized extension request.
type ExtensionRequestResponse struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	AssignmentID   uint      `json:"assignment_id"`
	RequestedUntil time.Time `json:"requested_until"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewExtensionRequestResponse converts a model into a DTO.
func NewExtensionRequestResponse(model models.ExtensionRequest) ExtensionRequestResponse {
	return ExtensionRequestResponse{
		ID:             model.ID,
		UserID:         model.UserID,
		AssignmentID:   model.AssignmentID,
		RequestedUntil: model.RequestedUntil,
		Reason:         model.Reason,
		Status:         model.Status,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewExtensionRequestResponseSlice converts a slice of models into DTOs.
func NewExtensionRequestResponseSlice(requests []models.ExtensionRequest) []ExtensionRequestResponse {
	responses := make([]ExtensionRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, NewExtensionRequestResponse(request))
	}
	return responses
}
