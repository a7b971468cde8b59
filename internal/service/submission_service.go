package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

const pastDueReason = "past due, no approval"

var (
	// ErrSubmissionAlreadyExists indicates the user already submitted for the assignment.
	ErrSubmissionAlreadyExists = errors.New("submission already exists")
	// ErrPastDeadline indicates the deadline passed and no active approval covers the user.
	ErrPastDeadline = errors.New("submission rejected: " + pastDueReason)
	// ErrFileTooLarge indicates the uploaded file exceeds the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrFileTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	// ErrExtensionRequestNotFound indicates the referenced extension request does not exist.
	ErrExtensionRequestNotFound = errors.New("extension request not found")
)

// FileUploader abstracts the storage backend for file submissions.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService accepts assignment submissions. Every submission path
// runs the same eligibility gate: one submission per (user, assignment),
// and past-due submissions require an active late approval.
type SubmissionService interface {
	CheckEligibility(ctx context.Context, userID, assignmentID uint) (dto.EligibilityResponse, error)
	SubmitText(ctx context.Context, userID, assignmentID uint, payload dto.TextSubmissionRequest) (dto.SubmissionResponse, error)
	SubmitLink(ctx context.Context, userID, assignmentID uint, payload dto.LinkSubmissionRequest) (dto.SubmissionResponse, error)
	SubmitFile(ctx context.Context, userID, assignmentID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error)
	ApproveLate(ctx context.Context, assignmentID uint, payload dto.LateApprovalCreateRequest) (dto.LateApprovalResponse, error)
	RequestExtension(ctx context.Context, userID, assignmentID uint, payload dto.ExtensionRequestCreateRequest) (dto.ExtensionRequestResponse, error)
	ListExtensions(ctx context.Context, assignmentID uint) ([]dto.ExtensionRequestResponse, error)
	UpdateExtensionStatus(ctx context.Context, id uint, payload dto.ExtensionRequestUpdateRequest) (dto.ExtensionRequestResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	approvals   repository.LateApprovalRepository
	extensions  repository.ExtensionRequestRepository
	uploader    FileUploader
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	maxFileSize int64
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	approvals repository.LateApprovalRepository,
	extensions repository.ExtensionRequestRepository,
	uploader FileUploader,
	maxFileSizeMB int,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		approvals:   approvals,
		extensions:  extensions,
		uploader:    uploader,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lms-go-api/internal/service/submission"),
		sanitizer:   bluemonday.UGCPolicy(),
		maxFileSize: int64(maxFileSizeMB) * 1024 * 1024,
		now:         time.Now,
	}
}

// CheckEligibility reports whether the user may submit right now, without
// side effects. A disallowed result carries the human-readable reason.
func (s *submissionService) CheckEligibility(ctx context.Context, userID, assignmentID uint) (dto.EligibilityResponse, error) {
	_, err := s.eligibleAssignment(ctx, userID, assignmentID)
	switch {
	case err == nil:
		return dto.EligibilityResponse{Allowed: true}, nil
	case errors.Is(err, ErrSubmissionAlreadyExists):
		return dto.EligibilityResponse{Allowed: false, Reason: "submission already exists"}, nil
	case errors.Is(err, ErrPastDeadline):
		return dto.EligibilityResponse{Allowed: false, Reason: pastDueReason}, nil
	default:
		return dto.EligibilityResponse{}, err
	}
}

// eligibleAssignment runs the submission gate and returns the assignment
// when the user may submit. Duplicate check precedes the deadline check, so
// a user who already submitted always sees the duplicate error.
func (s *submissionService) eligibleAssignment(ctx context.Context, userID, assignmentID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if _, err := s.submissions.GetByUserAndAssignment(ctx, userID, assignmentID); err == nil {
		return models.Assignment{}, ErrSubmissionAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Assignment{}, err
	}

	reference := s.now().UTC()
	if assignment.IsPastDue(reference) {
		approval, err := s.approvals.GetActive(ctx, userID, assignmentID, reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Assignment{}, ErrPastDeadline
			}
			return models.Assignment{}, err
		}
		s.logger.Info().
			Uint("user_id", userID).
			Uint("assignment_id", assignmentID).
			Time("approved_until", approval.ApprovedUntil).
			Msg("late submission accepted under approval")
	}

	return assignment, nil
}

func (s *submissionService) SubmitText(ctx context.Context, userID, assignmentID uint, payload dto.TextSubmissionRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.SubmissionResponse{}, errors.New("submission content empty after sanitization")
	}

	return s.create(ctx, userID, assignmentID, models.Submission{
		Kind:    models.SubmissionKindText,
		Content: content,
	})
}

func (s *submissionService) SubmitLink(ctx context.Context, userID, assignmentID uint, payload dto.LinkSubmissionRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return s.create(ctx, userID, assignmentID, models.Submission{
		Kind:    models.SubmissionKindLink,
		Content: payload.URL,
	})
}

func (s *submissionService) SubmitFile(ctx context.Context, userID, assignmentID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.file",
		trace.WithAttributes(attribute.Int("assignment.id", int(assignmentID))))
	defer span.End()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}
	if file.Size > s.maxFileSize {
		span.RecordError(ErrFileTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.SubmissionResponse{}, ErrFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxFileSize+1)); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if int64(buf.Len()) > s.maxFileSize {
		span.RecordError(ErrFileTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.SubmissionResponse{}, ErrFileTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("submission.detected_mime", mime.String()))
	if !allowedSubmissionMime(mime.String()) {
		span.RecordError(ErrFileTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.SubmissionResponse{}, ErrFileTypeNotAllowed
	}

	url, err := s.uploader.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.SubmissionResponse{}, err
	}

	response, err := s.create(ctx, userID, assignmentID, models.Submission{
		Kind:    models.SubmissionKindFile,
		FileURL: url,
	})
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	span.SetStatus(codes.Ok, "stored")
	return response, nil
}

func (s *submissionService) create(ctx context.Context, userID, assignmentID uint, submission models.Submission) (dto.SubmissionResponse, error) {
	if _, err := s.eligibleAssignment(ctx, userID, assignmentID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission.UserID = userID
	submission.AssignmentID = assignmentID
	submission.SubmittedAt = s.now().UTC()

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The unique index closes the check-then-create race.
		if _, getErr := s.submissions.GetByUserAndAssignment(ctx, userID, assignmentID); getErr == nil {
			return dto.SubmissionResponse{}, ErrSubmissionAlreadyExists
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("assignment_id", assignmentID).
		Str("kind", submission.Kind).
		Msg("submission accepted")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

// ApproveLate grants the user a late-submission window. A new approval for
// the same (user, assignment) pair replaces the previous one.
func (s *submissionService) ApproveLate(ctx context.Context, assignmentID uint, payload dto.LateApprovalCreateRequest) (dto.LateApprovalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LateApprovalResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LateApprovalResponse{}, ErrAssignmentNotFound
		}
		return dto.LateApprovalResponse{}, err
	}

	approvedUntil, err := time.Parse(time.RFC3339, payload.ApprovedUntil)
	if err != nil {
		return dto.LateApprovalResponse{}, fmt.Errorf("invalid approval deadline: %w", err)
	}

	approval := models.LateApproval{
		UserID:        payload.UserID,
		AssignmentID:  assignmentID,
		ApprovedUntil: approvedUntil.UTC(),
	}
	if err := s.approvals.Replace(ctx, &approval); err != nil {
		return dto.LateApprovalResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", payload.UserID).
		Uint("assignment_id", assignmentID).
		Time("approved_until", approval.ApprovedUntil).
		Msg("late submission approved")

	return dto.NewLateApprovalResponse(approval), nil
}

func (s *submissionService) RequestExtension(ctx context.Context, userID, assignmentID uint, payload dto.ExtensionRequestCreateRequest) (dto.ExtensionRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExtensionRequestResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExtensionRequestResponse{}, ErrAssignmentNotFound
		}
		return dto.ExtensionRequestResponse{}, err
	}

	requestedUntil, err := time.Parse(time.RFC3339, payload.RequestedUntil)
	if err != nil {
		return dto.ExtensionRequestResponse{}, fmt.Errorf("invalid requested deadline: %w", err)
	}

	request := models.ExtensionRequest{
		UserID:         userID,
		AssignmentID:   assignmentID,
		RequestedUntil: requestedUntil.UTC(),
		Reason:         strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason)),
		Status:         models.ExtensionStatusPending,
	}
	if err := s.extensions.Create(ctx, &request); err != nil {
		return dto.ExtensionRequestResponse{}, err
	}

	return dto.NewExtensionRequestResponse(request), nil
}

func (s *submissionService) ListExtensions(ctx context.Context, assignmentID uint) ([]dto.ExtensionRequestResponse, error) {
	requests, err := s.extensions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return dto.NewExtensionRequestResponseSlice(requests), nil
}

// UpdateExtensionStatus changes only the request's status. Approving a
// request does not grant a late-submission window; that requires a separate
// explicit approval.
func (s *submissionService) UpdateExtensionStatus(ctx context.Context, id uint, payload dto.ExtensionRequestUpdateRequest) (dto.ExtensionRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExtensionRequestResponse{}, err
	}

	request, err := s.extensions.UpdateStatus(ctx, id, payload.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExtensionRequestResponse{}, ErrExtensionRequestNotFound
		}
		return dto.ExtensionRequestResponse{}, err
	}

	return dto.NewExtensionRequestResponse(request), nil
}

func allowedSubmissionMime(m string) bool {
	lower := strings.ToLower(strings.TrimSpace(m))
	if strings.HasPrefix(lower, "image/") || strings.HasPrefix(lower, "text/") {
		return true
	}
	switch lower {
	case "application/pdf", "application/zip", "application/x-zip-compressed":
		return true
	default:
		return false
	}
}
