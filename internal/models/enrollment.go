package models

import (
	"time"

	"gorm.io/datatypes"
)

// Enrollment lifecycle states. Progress never moves a completed enrollment
// back to in_progress.
const (
	EnrollmentStatusNotStarted = "not_started"
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusCompleted  = "completed"
)

// Enrollment is the record of a user's participation in a course. Progress
// and status are written exclusively by the progress service.
type Enrollment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID         uint           `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Progress         float64        `gorm:"not null;default:0" json:"progress"`
	LessonProgress   float64        `gorm:"not null;default:0" json:"lesson_progress"`
	Status           string         `gorm:"size:32;not null;default:not_started" json:"status"`
	CompletedLessons datatypes.JSON `gorm:"type:json" json:"completed_lessons"`
	CurrentLessonID  *uint          `json:"current_lesson_id"`
	EnrolledAt       time.Time      `gorm:"not null" json:"enrolled_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// StatusForProgress derives the lifecycle status from an overall progress
// percentage. It is the only transition rule: full progress completes the
// enrollment, any progress marks it in progress, zero leaves it untouched.
func StatusForProgress(progress float64) string {
	switch {
	case progress >= 100:
		return EnrollmentStatusCompleted
	case progress > 0:
		return EnrollmentStatusInProgress
	default:
		return EnrollmentStatusNotStarted
	}
}
