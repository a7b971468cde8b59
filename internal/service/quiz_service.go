package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

// ErrQuestionMissingAnswer indicates a non-coding question lacks its
// correct-answer reference.
var ErrQuestionMissingAnswer = errors.New("question missing correct answer")

// QuizService manages quiz definitions. Updates replace the question set
// wholesale; attempts recorded against the old set are never revalidated.
type QuizService interface {
	Create(ctx context.Context, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]dto.QuizResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error)
	Get(ctx context.Context, id uint) (dto.QuizResponse, error)
	Questions(ctx context.Context, quizID uint, includeAnswers bool) (dto.QuizQuestionsResponse, error)
}

type quizService struct {
	quizzes   repository.QuizRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizService constructs a QuizService instance.
func NewQuizService(quizzes repository.QuizRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizzes,
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

func (s *quizService) Create(ctx context.Context, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrCourseNotFound
		}
		return dto.QuizResponse{}, err
	}

	questions, err := buildQuestions(payload.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		CourseID:     payload.CourseID,
		Title:        payload.Title,
		Description:  payload.Description,
		PassingScore: payload.PassingScore,
		Questions:    questions,
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("course_id", quiz.CourseID).Int("questions", len(questions)).Msg("quiz created")

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Update(ctx context.Context, id uint, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	questions, err := buildQuestions(payload.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz.CourseID = payload.CourseID
	quiz.Title = payload.Title
	quiz.Description = payload.Description
	quiz.PassingScore = payload.PassingScore

	if err := s.quizzes.Replace(ctx, &quiz, questions); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz.Questions = questions
	s.logger.Info().Uint("quiz_id", quiz.ID).Int("questions", len(questions)).Msg("quiz replaced")

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if _, err := s.quizzes.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	return s.quizzes.Delete(ctx, id)
}

func (s *quizService) List(ctx context.Context) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewQuizResponseSlice(quizzes), nil
}

func (s *quizService) ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewQuizResponseSlice(quizzes), nil
}

func (s *quizService) Get(ctx context.Context, id uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}
	return dto.NewQuizResponse(quiz), nil
}

// Questions returns the quiz's question list. When includeAnswers is false
// the correct answers and expected test-case outputs are stripped, so a
// learner never sees the grading key.
func (s *quizService) Questions(ctx context.Context, quizID uint, includeAnswers bool) (dto.QuizQuestionsResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizQuestionsResponse{}, ErrQuizNotFound
		}
		return dto.QuizQuestionsResponse{}, err
	}

	questions := make([]dto.QuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		response := dto.NewQuestionResponse(question)
		if !includeAnswers {
			response.CorrectAnswer = ""
			for i := range response.TestCases {
				response.TestCases[i].ExpectedOutput = ""
			}
		}
		questions = append(questions, response)
	}

	return dto.QuizQuestionsResponse{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		TotalQuestions: len(questions),
		Questions:      questions,
	}, nil
}

func buildQuestions(payload []dto.QuestionCreateRequest) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(payload))
	for _, item := range payload {
		questionType := models.QuestionType(strings.ToLower(strings.TrimSpace(item.Type)))
		if questionType != models.QuestionTypeCoding && strings.TrimSpace(item.CorrectAnswer) == "" {
			return nil, ErrQuestionMissingAnswer
		}

		questions = append(questions, models.Question{
			Text:          item.Text,
			Type:          questionType,
			Options:       dto.EncodeOptions(item.Options),
			CorrectAnswer: item.CorrectAnswer,
			CodeTemplate:  item.CodeTemplate,
			TestCases:     dto.EncodeTestCases(item.TestCases),
		})
	}
	return questions, nil
}
