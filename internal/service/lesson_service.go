package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

// ErrLessonNotFound indicates the referenced lesson does not exist.
var ErrLessonNotFound = errors.New("lesson not found")

// LessonService manages lessons and records completions. Completing a
// lesson updates the enrollment's lesson-completion state and triggers a
// full progress recomputation.
type LessonService interface {
	Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.LessonResponse, error)
	Complete(ctx context.Context, userID, lessonID uint) (dto.CourseProgressResponse, error)
}

type lessonService struct {
	lessons     repository.LessonRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	progress    ProgressService
	notifier    NotificationService
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLessonService constructs a LessonService instance.
func NewLessonService(
	lessons repository.LessonRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	progress ProgressService,
	notifier NotificationService,
	validate *validator.Validate,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		lessons:     lessons,
		courses:     courses,
		enrollments: enrollments,
		progress:    progress,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "lesson_service").Logger(),
		now:         time.Now,
	}
}

func (s *lessonService) Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrCourseNotFound
		}
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		CourseID: payload.CourseID,
		Title:    payload.Title,
		Content:  payload.Content,
		Position: payload.Position,
	}
	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) ListByCourse(ctx context.Context, courseID uint) ([]dto.LessonResponse, error) {
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewLessonResponseSlice(lessons), nil
}

// Complete marks the lesson finished for the user, refreshes the
// enrollment's completed-lesson set and lesson progress, then recomputes
// the blended course progress. Repeating the call is a no-op.
func (s *lessonService) Complete(ctx context.Context, userID, lessonID uint) (dto.CourseProgressResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrLessonNotFound
		}
		return dto.CourseProgressResponse{}, err
	}

	if err := s.lessons.MarkCompleted(ctx, userID, lessonID, lesson.CourseID, s.now().UTC()); err != nil {
		return dto.CourseProgressResponse{}, err
	}

	completed, err := s.lessons.ListCompletedLessonIDs(ctx, userID, lesson.CourseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	total, err := s.lessons.CountByCourse(ctx, lesson.CourseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	var lessonProgress float64
	if total > 0 {
		lessonProgress = math.Min(100, float64(len(completed))/float64(total)*100)
	}

	enrollment, err := ensureEnrollment(ctx, s.enrollments, userID, lesson.CourseID, s.now)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	encoded, err := json.Marshal(completed)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	currentLessonID := lessonID
	enrollment.CompletedLessons = datatypes.JSON(encoded)
	enrollment.LessonProgress = lessonProgress
	enrollment.CurrentLessonID = &currentLessonID
	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return dto.CourseProgressResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("lesson_id", lessonID).
		Uint("course_id", lesson.CourseID).
		Float64("lesson_progress", lessonProgress).
		Msg("lesson completed")

	s.notifyCompleted(ctx, lesson, userID)

	return s.progress.Recompute(ctx, userID, lesson.CourseID)
}

func (s *lessonService) notifyCompleted(ctx context.Context, lesson models.Lesson, userID uint) {
	if s.notifier == nil {
		return
	}

	_, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  userID,
		Type:    models.NotificationLessonCompleted,
		Title:   "Lesson completed",
		Message: fmt.Sprintf("You completed the lesson %q", lesson.Title),
		Metadata: map[string]interface{}{
			"lesson_id": lesson.ID,
			"course_id": lesson.CourseID,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish lesson completed notification")
	}
}
