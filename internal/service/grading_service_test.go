package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/lms-go-api/internal/models"
)

func encodeCases(t *testing.T, cases []models.TestCase) datatypes.JSON {
	t.Helper()

	raw, err := json.Marshal(cases)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func TestGradeChoiceNormalizesCaseAndWhitespace(t *testing.T) {
	engine := NewGradingEngine()

	require.True(t, engine.GradeChoice("  Paris ", "paris"))
	require.True(t, engine.GradeChoice("TRUE", "true"))
	require.False(t, engine.GradeChoice("London", "Paris"))
	require.False(t, engine.GradeChoice("", "Paris"))
}

func TestGradeCodingMatchesExpectedOutputSubstring(t *testing.T) {
	engine := NewGradingEngine()

	cases := []models.TestCase{
		{Input: "2 3", ExpectedOutput: "return a + b"},
		{Input: "0 0", ExpectedOutput: "def add"},
	}

	result := engine.GradeCoding("def add(a, b):\n    return a + b", cases)
	require.True(t, result.Passed)
	require.Equal(t, 2, result.PassedCount)
	require.Equal(t, 2, result.TotalCount)
	require.InDelta(t, 100.0, result.Score, 0.001)
	require.Len(t, result.Details, 2)
}

func TestGradeCodingFailsWhenAnyCaseMisses(t *testing.T) {
	engine := NewGradingEngine()

	cases := []models.TestCase{
		{ExpectedOutput: "return a + b"},
		{ExpectedOutput: "raise ValueError"},
	}

	result := engine.GradeCoding("def add(a, b):\n    return a + b", cases)
	require.False(t, result.Passed)
	require.Equal(t, 1, result.PassedCount)
	require.InDelta(t, 50.0, result.Score, 0.001)
}

func TestGradeCodingWithNoTestCasesPassesAtZeroScore(t *testing.T) {
	engine := NewGradingEngine()

	result := engine.GradeCoding("print('hello')", nil)
	require.True(t, result.Passed)
	require.Zero(t, result.Score)
	require.Zero(t, result.TotalCount)
}

func TestGradeCountsUnansweredQuestionsAsIncorrect(t *testing.T) {
	engine := NewGradingEngine()

	questions := []models.Question{
		{ID: 1, Type: models.QuestionTypeMultipleChoice, CorrectAnswer: "a"},
		{ID: 2, Type: models.QuestionTypeMultipleChoice, CorrectAnswer: "b"},
		{ID: 3, Type: models.QuestionTypeTrueFalse, CorrectAnswer: "true"},
	}

	correct, results := engine.Grade(questions, map[uint]string{
		1: "a",
		3: "false",
	})

	require.Equal(t, 1, correct)
	require.Len(t, results, 3)
	require.Equal(t, models.ResultCorrect, results[0].Result)
	require.Equal(t, models.ResultUnanswered, results[1].Result)
	require.Equal(t, models.ResultIncorrect, results[2].Result)
}

func TestGradeQuestionCodingRecordsDetails(t *testing.T) {
	engine := NewGradingEngine()

	question := models.Question{
		ID:   7,
		Type: models.QuestionTypeCoding,
		TestCases: encodeCases(t, []models.TestCase{
			{Input: "1", ExpectedOutput: "fizz"},
		}),
	}

	result := engine.GradeQuestion(question, "if n % 3 == 0: print('fizz')")
	require.Equal(t, models.ResultPassed, result.Result)
	require.Len(t, result.Details, 1)
	require.True(t, result.Details[0].Passed)
}

func TestGradeQuestionUnknownTypeFailsClosed(t *testing.T) {
	engine := NewGradingEngine()

	question := models.Question{ID: 9, Type: models.QuestionType("essay")}
	result := engine.GradeQuestion(question, "anything")
	require.Equal(t, models.ResultIncorrect, result.Result)
}

func TestGradeQuestionMalformedTestCasesFailClosed(t *testing.T) {
	engine := NewGradingEngine()

	question := models.Question{
		ID:        11,
		Type:      models.QuestionTypeCoding,
		TestCases: datatypes.JSON([]byte("{not json")),
	}

	// Malformed cases decode to an empty set, which passes vacuously.
	result := engine.GradeQuestion(question, "code")
	require.Equal(t, models.ResultPassed, result.Result)
	require.Empty(t, result.Details)
}
