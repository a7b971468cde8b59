package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New()
}

// newTestDB opens an isolated in-memory database per test and migrates the
// full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.LessonCompletion{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.AttemptCounter{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.LateApproval{},
		&models.ExtensionRequest{},
		&models.Notification{},
	))

	return db
}

func createCourse(t *testing.T, db *gorm.DB, title string) models.Course {
	t.Helper()

	course := models.Course{Title: title, Description: "test course"}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func createLesson(t *testing.T, db *gorm.DB, courseID uint, position int) models.Lesson {
	t.Helper()

	lesson := models.Lesson{
		CourseID: courseID,
		Title:    fmt.Sprintf("Lesson %d", position),
		Content:  "content",
		Position: position,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return lesson
}

func createChoiceQuiz(t *testing.T, db *gorm.DB, courseID uint, passingScore float64, answers ...string) models.Quiz {
	t.Helper()

	quiz := models.Quiz{
		CourseID:     courseID,
		Title:        "Quiz",
		PassingScore: passingScore,
	}
	for i, answer := range answers {
		quiz.Questions = append(quiz.Questions, models.Question{
			Text:          fmt.Sprintf("Question %d", i+1),
			Type:          models.QuestionTypeMultipleChoice,
			CorrectAnswer: answer,
		})
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}
