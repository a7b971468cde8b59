package models

import "time"

// LateApproval permits a specific user to submit a specific assignment past
// its due date, until ApprovedUntil. Creating a new approval for a pair
// replaces any existing one, so at most one is active at any instant.
type LateApproval struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index:idx_late_approval_user_assignment" json:"user_id"`
	AssignmentID  uint      `gorm:"not null;index:idx_late_approval_user_assignment" json:"assignment_id"`
	ApprovedUntil time.Time `gorm:"not null" json:"approved_until"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsActive reports whether the approval still covers the reference instant.
func (a LateApproval) IsActive(reference time.Time) bool {
	return a.ApprovedUntil.UTC().After(reference.UTC())
}

// Extension request states.
const (
	ExtensionStatusPending  = "pending"
	ExtensionStatusApproved = "approved"
	ExtensionStatusRejected = "rejected"
)

// ExtensionRequest is a user-initiated ask for more time. Approving one only
// updates its status; it does not create a LateApproval.
type ExtensionRequest struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	AssignmentID   uint      `gorm:"not null;index" json:"assignment_id"`
	RequestedUntil time.Time `gorm:"not null" json:"requested_until"`
	Reason         string    `gorm:"type:text;not null" json:"reason"`
	Status         string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
