package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

func newAttemptService(db *gorm.DB) QuizAttemptService {
	return NewQuizAttemptService(
		repository.NewQuizRepository(db),
		repository.NewAttemptRepository(db),
		NewGradingEngine(),
		newProgressService(db, nil),
		nil,
		testValidator(),
		testLogger(),
	)
}

func TestQuizSubmitGradesAndRecordsAttempt(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Go Basics")
	quiz := createChoiceQuiz(t, db, course.ID, 70, "a", "b", "c", "d")

	answers := map[uint]string{
		quiz.Questions[0].ID: "a",
		quiz.Questions[1].ID: "b",
		quiz.Questions[2].ID: "c",
		quiz.Questions[3].ID: "wrong",
	}

	svc := newAttemptService(db)
	attempt, err := svc.Submit(context.Background(), 1, quiz.ID, dto.QuizSubmissionRequest{Answers: answers})
	require.NoError(t, err)

	require.InDelta(t, 75.0, attempt.Score, 0.001)
	require.True(t, attempt.Passed)
	require.Equal(t, 1, attempt.AttemptNumber)
	require.NotEmpty(t, attempt.Reference)
	require.Len(t, attempt.Results, 4)
	require.NotNil(t, attempt.Progress)
	require.InDelta(t, 100.0, attempt.Progress.QuizProgress, 0.001)

	var stored models.QuizAttempt
	require.NoError(t, db.Where("reference = ?", attempt.Reference).First(&stored).Error)
	require.InDelta(t, 75.0, stored.Score, 0.001)
}

func TestQuizSubmitAssignsSequentialAttemptNumbers(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Sequencing")
	quiz := createChoiceQuiz(t, db, course.ID, 70, "a")
	answers := map[uint]string{quiz.Questions[0].ID: "a"}

	svc := newAttemptService(db)
	for expected := 1; expected <= 3; expected++ {
		attempt, err := svc.Submit(context.Background(), 1, quiz.ID, dto.QuizSubmissionRequest{Answers: answers})
		require.NoError(t, err)
		require.Equal(t, expected, attempt.AttemptNumber)
	}

	// A different user starts their own sequence.
	attempt, err := svc.Submit(context.Background(), 2, quiz.ID, dto.QuizSubmissionRequest{Answers: answers})
	require.NoError(t, err)
	require.Equal(t, 1, attempt.AttemptNumber)

	var count int64
	require.NoError(t, db.Model(&models.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&count).Error)
	require.EqualValues(t, 4, count)
}

func TestQuizSubmitFailingScore(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Hard Course")
	quiz := createChoiceQuiz(t, db, course.ID, 70, "a", "b")

	svc := newAttemptService(db)
	attempt, err := svc.Submit(context.Background(), 1, quiz.ID, dto.QuizSubmissionRequest{
		Answers: map[uint]string{
			quiz.Questions[0].ID: "a",
			quiz.Questions[1].ID: "nope",
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 50.0, attempt.Score, 0.001)
	require.False(t, attempt.Passed)
}

func TestQuizSubmitRejectsEmptyQuiz(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Draft Course")
	quiz := createChoiceQuiz(t, db, course.ID, 70)

	svc := newAttemptService(db)
	_, err := svc.Submit(context.Background(), 1, quiz.ID, dto.QuizSubmissionRequest{
		Answers: map[uint]string{1: "a"},
	})
	require.ErrorIs(t, err, ErrQuizHasNoQuestions)
}

func TestQuizSubmitUnknownQuiz(t *testing.T) {
	db := newTestDB(t)

	svc := newAttemptService(db)
	_, err := svc.Submit(context.Background(), 1, 404, dto.QuizSubmissionRequest{
		Answers: map[uint]string{1: "a"},
	})
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizHistoryAggregatesStats(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "History Course")
	quizA := createChoiceQuiz(t, db, course.ID, 70, "a")
	quizB := createChoiceQuiz(t, db, course.ID, 70, "b")

	svc := newAttemptService(db)
	_, err := svc.Submit(context.Background(), 1, quizA.ID, dto.QuizSubmissionRequest{
		Answers: map[uint]string{quizA.Questions[0].ID: "a"},
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 1, quizB.ID, dto.QuizSubmissionRequest{
		Answers: map[uint]string{quizB.Questions[0].ID: "wrong"},
	})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, 2, history.Summary.TotalAttempts)
	require.Equal(t, 2, history.Summary.TotalQuizzesAttempted)
	require.InDelta(t, 50.0, history.Summary.AverageScore, 0.001)
	require.InDelta(t, 50.0, history.Summary.PassRate, 0.001)
	require.Len(t, history.Attempts, 2)
}

func TestListByQuizFiltersByUser(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Filter Course")
	quiz := createChoiceQuiz(t, db, course.ID, 70, "a")
	answers := map[uint]string{quiz.Questions[0].ID: "a"}

	svc := newAttemptService(db)
	_, err := svc.Submit(context.Background(), 1, quiz.ID, dto.QuizSubmissionRequest{Answers: answers})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 2, quiz.ID, dto.QuizSubmissionRequest{Answers: answers})
	require.NoError(t, err)

	all, err := svc.ListByQuiz(context.Background(), quiz.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	userID := uint(2)
	mine, err := svc.ListByQuiz(context.Background(), quiz.ID, &userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, uint(2), mine[0].UserID)
}
