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

func newQuizService(db *gorm.DB) QuizService {
	return NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewCourseRepository(db),
		testValidator(),
		testLogger(),
	)
}

func quizPayload(courseID uint) dto.QuizCreateRequest {
	return dto.QuizCreateRequest{
		CourseID:     courseID,
		Title:        "Syntax Basics",
		PassingScore: 70,
		Questions: []dto.QuestionCreateRequest{
			{
				Text:          "Which keyword declares a variable?",
				Type:          "multiple_choice",
				Options:       []string{"var", "let", "def"},
				CorrectAnswer: "var",
			},
			{
				Text: "Write a function that adds two numbers.",
				Type: "coding",
				TestCases: []models.TestCase{
					{Input: "1 2", ExpectedOutput: "return a + b"},
				},
			},
		},
	}
}

func TestQuizCreatePersistsQuestions(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Go 101")

	svc := newQuizService(db)
	quiz, err := svc.Create(context.Background(), quizPayload(course.ID))
	require.NoError(t, err)
	require.Equal(t, 2, quiz.TotalQuestions)

	var count int64
	require.NoError(t, db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestQuizCreateRequiresCorrectAnswerForChoiceQuestions(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Go 101")

	payload := quizPayload(course.ID)
	payload.Questions[0].CorrectAnswer = ""

	svc := newQuizService(db)
	_, err := svc.Create(context.Background(), payload)
	require.ErrorIs(t, err, ErrQuestionMissingAnswer)
}

func TestQuizUpdateReplacesQuestionSetKeepingAttempts(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Go 101")

	svc := newQuizService(db)
	quiz, err := svc.Create(context.Background(), quizPayload(course.ID))
	require.NoError(t, err)

	seedAttempt(t, db, 1, quiz.ID, 50)

	updated := quizPayload(course.ID)
	updated.Title = "Syntax Basics v2"
	updated.Questions = updated.Questions[:1]

	result, err := svc.Update(context.Background(), quiz.ID, updated)
	require.NoError(t, err)
	require.Equal(t, "Syntax Basics v2", result.Title)
	require.Equal(t, 1, result.TotalQuestions)

	var attempts int64
	require.NoError(t, db.Model(&models.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attempts).Error)
	require.EqualValues(t, 1, attempts)
}

func TestQuizQuestionsRedactsAnswersForStudents(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Go 101")

	svc := newQuizService(db)
	quiz, err := svc.Create(context.Background(), quizPayload(course.ID))
	require.NoError(t, err)

	questions, err := svc.Questions(context.Background(), quiz.ID, false)
	require.NoError(t, err)
	require.Equal(t, 2, questions.TotalQuestions)
	for _, question := range questions.Questions {
		require.Empty(t, question.CorrectAnswer)
		for _, testCase := range question.TestCases {
			require.Empty(t, testCase.ExpectedOutput)
		}
	}

	withAnswers, err := svc.Questions(context.Background(), quiz.ID, true)
	require.NoError(t, err)
	require.Equal(t, "var", withAnswers.Questions[0].CorrectAnswer)
	require.Equal(t, "return a + b", withAnswers.Questions[1].TestCases[0].ExpectedOutput)
}

func TestQuizDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Go 101")

	svc := newQuizService(db)
	quiz, err := svc.Create(context.Background(), quizPayload(course.ID))
	require.NoError(t, err)
	seedAttempt(t, db, 1, quiz.ID, 80)

	require.NoError(t, svc.Delete(context.Background(), quiz.ID))

	var questions, attempts int64
	require.NoError(t, db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questions).Error)
	require.NoError(t, db.Model(&models.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attempts).Error)
	require.Zero(t, questions)
	require.Zero(t, attempts)
}

func TestQuizGetUnknown(t *testing.T) {
	db := newTestDB(t)

	svc := newQuizService(db)
	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrQuizNotFound)
}
