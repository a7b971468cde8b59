package models

import "time"

// Submission kinds.
const (
	SubmissionKindText = "text"
	SubmissionKindLink = "link"
	SubmissionKindFile = "file"
)

// Submission is a learner's answer to an assignment. At most one submission
// exists per (user, assignment) pair; the eligibility check rejects
// duplicates and the unique index backstops it against races.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_submission_user_assignment" json:"user_id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_user_assignment" json:"assignment_id"`
	Kind         string     `gorm:"size:16;not null" json:"kind"`
	Content      string     `gorm:"type:text" json:"content"`
	FileURL      string     `gorm:"size:512" json:"file_url"`
	Grade        *float64   `json:"grade"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	GradedAt     *time.Time `json:"graded_at"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

// IsGraded reports whether an instructor has recorded a grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}
