package models

import "time"

// Assignment is a deadline-bound piece of coursework. Editing the due date
// never re-evaluates submissions accepted under the old one.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	MaxScore    float64   `gorm:"not null;default:100" json:"max_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPastDue reports whether the deadline has passed at the reference instant.
// Both sides are normalized to UTC before comparing.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.UTC().After(a.DueDate.UTC())
}
