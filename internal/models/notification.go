package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification event types emitted by the learning flows.
const (
	NotificationQuizGraded       = "quiz_graded"
	NotificationLessonCompleted  = "lesson_completed"
	NotificationSubmissionGraded = "submission_graded"
	NotificationCourseCompleted  = "course_completed"
)

// Notification is a per-user event persisted for later retrieval and fanned
// out over Redis and NATS for realtime consumers.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	Type      string            `gorm:"size:48;not null" json:"type"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
