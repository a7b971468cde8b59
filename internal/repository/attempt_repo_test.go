package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.AttemptCounter{},
	))

	return db
}

func TestNextAttemptNumberIncrementsPerPair(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)

	for expected := 1; expected <= 5; expected++ {
		value, err := repo.NextAttemptNumber(context.Background(), 1, 10)
		require.NoError(t, err)
		require.Equal(t, expected, value)
	}

	// Separate pairs keep independent sequences.
	value, err := repo.NextAttemptNumber(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Equal(t, 1, value)

	value, err = repo.NextAttemptNumber(context.Background(), 1, 11)
	require.NoError(t, err)
	require.Equal(t, 1, value)
}

func TestCountDistinctAttemptedIgnoresRepeatsAndOtherCourses(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)

	course := models.Course{Title: "Counting"}
	require.NoError(t, db.Create(&course).Error)
	other := models.Course{Title: "Other"}
	require.NoError(t, db.Create(&other).Error)

	quizA := models.Quiz{CourseID: course.ID, Title: "A", PassingScore: 70}
	quizB := models.Quiz{CourseID: course.ID, Title: "B", PassingScore: 70}
	quizC := models.Quiz{CourseID: other.ID, Title: "C", PassingScore: 70}
	require.NoError(t, db.Create(&quizA).Error)
	require.NoError(t, db.Create(&quizB).Error)
	require.NoError(t, db.Create(&quizC).Error)

	for _, quizID := range []uint{quizA.ID, quizA.ID, quizC.ID} {
		attempt := models.QuizAttempt{
			Reference:     uuid.NewString(),
			UserID:        1,
			QuizID:        quizID,
			AttemptNumber: 1,
			CompletedAt:   time.Now().UTC(),
		}
		require.NoError(t, db.Create(&attempt).Error)
	}

	count, err := repo.CountDistinctAttempted(context.Background(), 1, course.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
