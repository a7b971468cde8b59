package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ProgressService recomputes a user's blended course progress and applies
// the enrollment lifecycle. It is the sole writer of enrollment progress and
// status.
type ProgressService interface {
	Get(ctx context.Context, userID, courseID uint) (dto.CourseProgressResponse, error)
	Recompute(ctx context.Context, userID, courseID uint) (dto.CourseProgressResponse, error)
	RecomputeForQuiz(ctx context.Context, userID, quizID uint) (dto.CourseProgressResponse, error)
}

type progressService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	quizzes     repository.QuizRepository
	attempts    repository.AttemptRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressService constructs the progress aggregator.
func NewProgressService(
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	quizzes repository.QuizRepository,
	attempts repository.AttemptRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		enrollments: enrollments,
		courses:     courses,
		quizzes:     quizzes,
		attempts:    attempts,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

func progressCacheKey(userID, courseID uint) string {
	return fmt.Sprintf("progress:user:%d:course:%d", userID, courseID)
}

// Get serves the cached snapshot when available and recomputes otherwise.
func (s *progressService) Get(ctx context.Context, userID, courseID uint) (dto.CourseProgressResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, progressCacheKey(userID, courseID)).Result()
		if err == nil {
			var response dto.CourseProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Uint("course_id", courseID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	return s.Recompute(ctx, userID, courseID)
}

// Recompute derives quiz and lesson progress, blends them, applies the
// lifecycle transition and writes the result back to the enrollment.
// Recomputing twice with no underlying change yields the same value.
func (s *progressService) Recompute(ctx context.Context, userID, courseID uint) (dto.CourseProgressResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrCourseNotFound
		}
		return dto.CourseProgressResponse{}, err
	}

	totalQuizzes, err := s.quizzes.CountByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	completedQuizzes, err := s.attempts.CountDistinctAttempted(ctx, userID, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	enrollment, err := ensureEnrollment(ctx, s.enrollments, userID, courseID, s.now)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	var quizProgress float64
	if totalQuizzes > 0 {
		quizProgress = math.Min(100, float64(completedQuizzes)/float64(totalQuizzes)*100)
	}

	lessonProgress := enrollment.LessonProgress

	var overall float64
	if totalQuizzes > 0 {
		overall = math.Min(100, (lessonProgress+quizProgress)/2)
	} else {
		overall = math.Min(100, lessonProgress)
	}

	status := models.StatusForProgress(overall)

	enrollment.Progress = overall
	enrollment.Status = status
	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return dto.CourseProgressResponse{}, err
	}

	response := dto.CourseProgressResponse{
		UserID:           userID,
		CourseID:         courseID,
		OverallProgress:  round2(overall),
		LessonProgress:   round2(lessonProgress),
		QuizProgress:     round2(quizProgress),
		CompletedQuizzes: int(completedQuizzes),
		TotalQuizzes:     int(totalQuizzes),
		Status:           status,
	}

	s.storeCache(ctx, userID, courseID, response)

	return response, nil
}

// RecomputeForQuiz resolves the owning course of the quiz and recomputes.
func (s *progressService) RecomputeForQuiz(ctx context.Context, userID, quizID uint) (dto.CourseProgressResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrQuizNotFound
		}
		return dto.CourseProgressResponse{}, err
	}

	return s.Recompute(ctx, userID, quiz.CourseID)
}

// ensureEnrollment fetches the enrollment or auto-creates it at zero
// progress. The create is idempotent: a concurrent insert loses against the
// unique index and the winner's row is re-read.
func ensureEnrollment(ctx context.Context, enrollments repository.EnrollmentRepository, userID, courseID uint, now func() time.Time) (models.Enrollment, error) {
	enrollment, err := enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return enrollment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Enrollment{}, err
	}

	enrollment = models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Progress:   0,
		Status:     models.EnrollmentStatusNotStarted,
		EnrolledAt: now().UTC(),
	}
	if createErr := enrollments.Create(ctx, &enrollment); createErr != nil {
		existing, getErr := enrollments.GetByUserAndCourse(ctx, userID, courseID)
		if getErr != nil {
			return models.Enrollment{}, createErr
		}
		return existing, nil
	}

	return enrollment, nil
}

func (s *progressService) storeCache(ctx context.Context, userID, courseID uint, response dto.CourseProgressResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, progressCacheKey(userID, courseID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store progress cache")
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
