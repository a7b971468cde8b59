package service

import (
	"encoding/json"
	"strings"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// GradingEngine scores answers against question definitions. It is pure:
// no state, no I/O, and it never returns an error past this boundary —
// malformed input downgrades to an incorrect/failed outcome so a full score
// can still be computed.
type GradingEngine struct{}

// NewGradingEngine constructs the engine.
func NewGradingEngine() GradingEngine {
	return GradingEngine{}
}

// CodingResult is the detailed outcome of grading one coding question.
type CodingResult struct {
	Passed      bool
	Score       float64
	PassedCount int
	TotalCount  int
	Details     []models.TestCaseResult
}

// Grade scores every question of a quiz against the supplied answers, keyed
// by question id. Questions without an answer entry are recorded as
// unanswered and count as incorrect. It returns the number of fully correct
// questions and the ordered per-question results.
func (e GradingEngine) Grade(questions []models.Question, answers map[uint]string) (int, []models.QuestionResult) {
	correct := 0
	results := make([]models.QuestionResult, 0, len(questions))

	for _, question := range questions {
		answer, answered := answers[question.ID]
		if !answered {
			results = append(results, models.QuestionResult{
				QuestionID: question.ID,
				Type:       question.Type,
				Result:     models.ResultUnanswered,
			})
			continue
		}

		result := e.GradeQuestion(question, answer)
		if result.Result == models.ResultCorrect || result.Result == models.ResultPassed {
			correct++
		}
		results = append(results, result)
	}

	return correct, results
}

// GradeQuestion scores a single answered question. Unknown question types
// fail closed with an incorrect outcome.
func (e GradingEngine) GradeQuestion(question models.Question, answer string) models.QuestionResult {
	result := models.QuestionResult{
		QuestionID: question.ID,
		Type:       question.Type,
	}

	switch question.Type {
	case models.QuestionTypeMultipleChoice, models.QuestionTypeTrueFalse:
		if e.GradeChoice(answer, question.CorrectAnswer) {
			result.Result = models.ResultCorrect
		} else {
			result.Result = models.ResultIncorrect
		}
	case models.QuestionTypeCoding:
		coding := e.GradeCoding(answer, decodeTestCases(question.TestCases))
		if coding.Passed {
			result.Result = models.ResultPassed
		} else {
			result.Result = models.ResultFailed
		}
		result.Details = coding.Details
	default:
		result.Result = models.ResultIncorrect
	}

	return result
}

// GradeChoice reports whether the answer matches the expected one, comparing
// case-insensitively after trimming whitespace. No partial credit.
func (e GradingEngine) GradeChoice(answer, expected string) bool {
	return normalizeAnswer(answer) == normalizeAnswer(expected)
}

// GradeCoding evaluates submitted code against the test cases. A case
// succeeds when its expected output appears as a case-insensitive substring
// of the code; the question passes only when every case succeeds. This is a
// deliberately coarse oracle, not sandboxed execution.
func (e GradingEngine) GradeCoding(code string, cases []models.TestCase) CodingResult {
	result := CodingResult{
		TotalCount: len(cases),
		Details:    make([]models.TestCaseResult, 0, len(cases)),
	}

	lowered := strings.ToLower(code)
	for _, testCase := range cases {
		passed := strings.Contains(lowered, strings.ToLower(testCase.ExpectedOutput))
		if passed {
			result.PassedCount++
		}
		result.Details = append(result.Details, models.TestCaseResult{
			Input:    testCase.Input,
			Expected: testCase.ExpectedOutput,
			Passed:   passed,
		})
	}

	result.Passed = result.PassedCount == result.TotalCount
	if result.TotalCount > 0 {
		result.Score = float64(result.PassedCount) / float64(result.TotalCount) * 100
	}

	return result
}

func normalizeAnswer(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func decodeTestCases(raw []byte) []models.TestCase {
	if len(raw) == 0 {
		return nil
	}

	var cases []models.TestCase
	if err := json.Unmarshal(raw, &cases); err != nil {
		return nil
	}
	return cases
}
