package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/observability"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

// ErrQuizNotFound indicates the referenced quiz does not exist.
var ErrQuizNotFound = errors.New("quiz not found")

// ErrQuizHasNoQuestions indicates the quiz cannot be attempted yet.
var ErrQuizHasNoQuestions = errors.New("quiz has no questions")

// QuizAttemptService grades quiz submissions and records append-only
// attempts with strictly increasing attempt numbers per (user, quiz) pair.
type QuizAttemptService interface {
	Submit(ctx context.Context, userID, quizID uint, payload dto.QuizSubmissionRequest) (dto.QuizAttemptResponse, error)
	ListByQuiz(ctx context.Context, quizID uint, userID *uint) ([]dto.QuizAttemptResponse, error)
	History(ctx context.Context, userID uint) (dto.UserQuizHistoryResponse, error)
}

type quizAttemptService struct {
	quizzes   repository.QuizRepository
	attempts  repository.AttemptRepository
	grader    GradingEngine
	progress  ProgressService
	notifier  NotificationService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewQuizAttemptService constructs the attempt recorder.
func NewQuizAttemptService(
	quizzes repository.QuizRepository,
	attempts repository.AttemptRepository,
	grader GradingEngine,
	progress ProgressService,
	notifier NotificationService,
	validate *validator.Validate,
	logger zerolog.Logger,
) QuizAttemptService {
	return &quizAttemptService{
		quizzes:   quizzes,
		attempts:  attempts,
		grader:    grader,
		progress:  progress,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_attempt_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/lms-go-api/internal/service/quiz_attempt"),
		now:       time.Now,
	}
}

func (s *quizAttemptService) Submit(ctx context.Context, userID, quizID uint, payload dto.QuizSubmissionRequest) (dto.QuizAttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int64("quiz.id", int64(quizID)),
		attribute.Int64("quiz.user_id", int64(userID)),
	))
	defer span.End()

	start := s.now()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.QuizAttemptResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "quiz_not_found")
			return dto.QuizAttemptResponse{}, ErrQuizNotFound
		}
		span.RecordError(err)
		return dto.QuizAttemptResponse{}, err
	}

	if len(quiz.Questions) == 0 {
		span.SetStatus(codes.Error, "quiz_empty")
		return dto.QuizAttemptResponse{}, ErrQuizHasNoQuestions
	}

	correct, results := s.grader.Grade(quiz.Questions, payload.Answers)
	score := round2(float64(correct) / float64(len(quiz.Questions)) * 100)
	passed := score >= quiz.PassingScore

	attemptNumber, err := s.attempts.NextAttemptNumber(ctx, userID, quizID)
	if err != nil {
		span.RecordError(err)
		return dto.QuizAttemptResponse{}, err
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		span.RecordError(err)
		return dto.QuizAttemptResponse{}, err
	}

	attempt := models.QuizAttempt{
		Reference:     uuid.NewString(),
		UserID:        userID,
		QuizID:        quizID,
		AttemptNumber: attemptNumber,
		Score:         score,
		Passed:        passed,
		Results:       datatypes.JSON(encoded),
		CompletedAt:   s.now().UTC(),
	}
	if err := s.attempts.Create(ctx, &attempt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt_persist_failed")
		return dto.QuizAttemptResponse{}, err
	}

	resultLabel := "failed"
	if passed {
		resultLabel = "passed"
	}
	observability.QuizSubmissions().WithLabelValues(resultLabel).Inc()
	observability.GradingLatency().Observe(s.now().Sub(start).Seconds())

	response := dto.QuizAttemptResponse{
		Reference:     attempt.Reference,
		UserID:        userID,
		QuizID:        quizID,
		AttemptNumber: attemptNumber,
		Score:         score,
		Passed:        passed,
		Results:       results,
		CompletedAt:   attempt.CompletedAt,
	}

	// The attempt is committed at this point; a progress failure must not
	// undo it.
	progress, err := s.progress.Recompute(ctx, userID, quiz.CourseID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Uint("quiz_id", quizID).Msg("failed to recompute progress after attempt")
	} else {
		response.Progress = &progress
	}

	s.notifyGraded(ctx, quiz, attempt)

	span.SetAttributes(
		attribute.Float64("quiz.score", score),
		attribute.Bool("quiz.passed", passed),
		attribute.Int("quiz.attempt_number", attemptNumber),
	)

	s.logger.Info().
		Uint("user_id", userID).
		Uint("quiz_id", quizID).
		Int("attempt_number", attemptNumber).
		Float64("score", score).
		Bool("passed", passed).
		Msg("quiz attempt recorded")

	return response, nil
}

func (s *quizAttemptService) ListByQuiz(ctx context.Context, quizID uint, userID *uint) ([]dto.QuizAttemptResponse, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	attempts, err := s.attempts.ListByQuiz(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizAttemptResponseSlice(attempts), nil
}

func (s *quizAttemptService) History(ctx context.Context, userID uint) (dto.UserQuizHistoryResponse, error) {
	attempts, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return dto.UserQuizHistoryResponse{}, err
	}

	summary := dto.QuizStatsSummary{TotalAttempts: len(attempts)}
	if len(attempts) > 0 {
		distinct := make(map[uint]struct{}, len(attempts))
		var totalScore float64
		var passedCount int
		for _, attempt := range attempts {
			distinct[attempt.QuizID] = struct{}{}
			totalScore += attempt.Score
			if attempt.Passed {
				passedCount++
			}
		}

		summary.TotalQuizzesAttempted = len(distinct)
		summary.AverageScore = round2(totalScore / float64(len(attempts)))
		summary.PassRate = round2(float64(passedCount) / float64(len(attempts)) * 100)
	}

	return dto.UserQuizHistoryResponse{
		UserID:   userID,
		Summary:  summary,
		Attempts: dto.NewQuizAttemptResponseSlice(attempts),
	}, nil
}

func (s *quizAttemptService) notifyGraded(ctx context.Context, quiz models.Quiz, attempt models.QuizAttempt) {
	if s.notifier == nil {
		return
	}

	verdict := "did not pass"
	if attempt.Passed {
		verdict = "passed"
	}

	_, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  attempt.UserID,
		Type:    models.NotificationQuizGraded,
		Title:   "Quiz graded",
		Message: fmt.Sprintf("You %s %q with a score of %.2f", verdict, quiz.Title, attempt.Score),
		Metadata: map[string]interface{}{
			"quiz_id":        attempt.QuizID,
			"attempt_number": attempt.AttemptNumber,
			"score":          attempt.Score,
			"passed":         attempt.Passed,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish quiz graded notification")
	}
}
