package models

import "time"

// User represents a platform account that can enroll in courses and submit work.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleStudent may take quizzes and submit assignments.
	RoleStudent = "student"
	// RoleInstructor manages course content and grades submissions.
	RoleInstructor = "instructor"
	// RoleAdmin has full administrative access.
	RoleAdmin = "admin"
)
