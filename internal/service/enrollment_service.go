package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

var (
	// ErrAlreadyEnrolled indicates the user already has an enrollment for the course.
	ErrAlreadyEnrolled = errors.New("already enrolled in course")
	// ErrEnrollmentNotFound indicates no enrollment exists for the user and course.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// EnrollmentService manages course enrollments.
type EnrollmentService interface {
	Enroll(ctx context.Context, userID uint, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, error)
	Get(ctx context.Context, userID, courseID uint) (dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		courses:     courses,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		now:         time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID uint, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.enrollments.GetByUserAndCourse(ctx, userID, payload.CourseID); err == nil {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   payload.CourseID,
		Status:     models.EnrollmentStatusNotStarted,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		// The unique index closes the check-then-create race.
		existing, getErr := s.enrollments.GetByUserAndCourse(ctx, userID, payload.CourseID)
		if getErr == nil && existing.ID != 0 {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("course_id", payload.CourseID).
		Msg("user enrolled in course")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListByUser(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) Get(ctx context.Context, userID, courseID uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}
	return dto.NewEnrollmentResponse(enrollment), nil
}
