package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

type stubUploader struct {
	url string
	err error
}

func (s stubUploader) Upload(_ context.Context, _ string, _ io.Reader) (string, error) {
	return s.url, s.err
}

func newSubmissionService(t *testing.T, db *gorm.DB, now time.Time) SubmissionService {
	t.Helper()

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewLateApprovalRepository(db),
		repository.NewExtensionRequestRepository(db),
		stubUploader{url: "https://cdn.example.com/sub.pdf"},
		10,
		testValidator(),
		testLogger(),
	)
	svc.(*submissionService).now = func() time.Time { return now }
	return svc
}

func createAssignment(t *testing.T, db *gorm.DB, courseID uint, due time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		CourseID: courseID,
		Title:    "Essay",
		DueDate:  due.UTC(),
		MaxScore: 100,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

var (
	dueDate    = time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)
	beforeDue  = time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	afterDue   = time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)
	wellAfter  = time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC)
	graceLimit = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

func TestSubmitTextBeforeDeadline(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Writing")
	assignment := createAssignment(t, db, course.ID, dueDate)

	svc := newSubmissionService(t, db, beforeDue)
	submission, err := svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{
		Content: "My answer.",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionKindText, submission.Kind)
	require.Equal(t, beforeDue, submission.SubmittedAt)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Writing")
	assignment := createAssignment(t, db, course.ID, dueDate)

	svc := newSubmissionService(t, db, beforeDue)
	_, err := svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{Content: "First."})
	require.NoError(t, err)

	_, err = svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{Content: "Second."})
	require.ErrorIs(t, err, ErrSubmissionAlreadyExists)

	eligibility, err := svc.CheckEligibility(context.Background(), 1, assignment.ID)
	require.NoError(t, err)
	require.False(t, eligibility.Allowed)
	require.Equal(t, "submission already exists", eligibility.Reason)
}

func TestSubmitPastDueWithoutApproval(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Writing")
	assignment := createAssignment(t, db, course.ID, dueDate)

	svc := newSubmissionService(t, db, afterDue)
	_, err := svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{Content: "Too late."})
	require.ErrorIs(t, err, ErrPastDeadline)

	eligibility, err := svc.CheckEligibility(context.Background(), 1, assignment.ID)
	require.NoError(t, err)
	require.False(t, eligibility.Allowed)
	require.Equal(t, "past due, no approval", eligibility.Reason)
}

func TestSubmitPastDueWithActiveApproval(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Writing")
	assignment := createAssignment(t, db, course.ID, dueDate)

	svc := newSubmissionService(t, db, afterDue)
	_, err := svc.ApproveLate(context.Background(), assignment.ID, dto.LateApprovalCreateRequest{
		UserID:        1,
		ApprovedUntil: graceLimit.Format(time.RFC3339),
	})
	require.NoError(t, err)

	eligibility, err := svc.CheckEligibility(context.Background(), 1, assignment.ID)
	require.NoError(t, err)
	require.True(t, eligibility.Allowed)

	submission, err := svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{Content: "Late but approved."})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionKindText, submission.Kind)

	// The approval covers only the named user.
	_, err = svc.SubmitText(context.Background(), 2, assignment.ID, dto.TextSubmissionRequest{Content: "Also late."})
	require.ErrorIs(t, err, ErrPastDeadline)
}

func TestApproveLateSupersedesPriorApproval(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Writing")
	assignment := createAssignment(t, db, course.ID, dueDate)

	svc := newSubmissionService(t, db, wellAfter)
	_, err := svc.ApproveLate(context.Background(), assignment.ID, dto.LateApprovalCreateRequest{
		UserID:        1,
		ApprovedUntil: graceLimit.Format(time.RFC3339),
	})
	require.NoError(t, err)

	// A narrower approval replaces the generous one; last writer wins.
	_, err = svc.ApproveLate(context.Background(), assignment.ID, dto.LateApprovalCreateRequest{
		UserID:        1,
		ApprovedUntil: afterDue.Format(time.RFC3339),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.LateApproval{}).
		Where("user_id = ? AND assignment_id = ?", 1, assignment.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	_, err = svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{Content: "Too late now."})
	require.ErrorIs(t, err, ErrPastDeadline)
}

func TestApprovedExtensionDoesNotGrantLateSubmission(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Writing")
	assignment := createAssignment(t, db, course.ID, dueDate)

	svc := newSubmissionService(t, db, afterDue)
	request, err := svc.RequestExtension(context.Background(), 1, assignment.ID, dto.ExtensionRequestCreateRequest{
		RequestedUntil: graceLimit.Format(time.RFC3339),
		Reason:         "Family emergency",
	})
	require.NoError(t, err)
	require.Equal(t, models.ExtensionStatusPending, request.Status)

	updated, err := svc.UpdateExtensionStatus(context.Background(), request.ID, dto.ExtensionRequestUpdateRequest{
		Status: models.ExtensionStatusApproved,
	})
	require.NoError(t, err)
	require.Equal(t, models.ExtensionStatusApproved, updated.Status)

	// Status is bookkeeping only; the gate still requires a late approval.
	_, err = svc.SubmitText(context.Background(), 1, assignment.ID, dto.TextSubmissionRequest{Content: "Still late."})
	require.ErrorIs(t, err, ErrPastDeadline)
}

func TestSubmitFileUploadsAndRecords(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Files")
	assignment := createAssignment(t, db, course.ID, dueDate)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text submission"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	header := req.MultipartForm.File["file"][0]

	svc := newSubmissionService(t, db, beforeDue)
	submission, err := svc.SubmitFile(context.Background(), 1, assignment.ID, header)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionKindFile, submission.Kind)
	require.Equal(t, "https://cdn.example.com/sub.pdf", submission.FileURL)
}

func TestSubmitUnknownAssignment(t *testing.T) {
	db := newTestDB(t)

	svc := newSubmissionService(t, db, beforeDue)
	_, err := svc.SubmitText(context.Background(), 1, 404, dto.TextSubmissionRequest{Content: "Hello."})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.CheckEligibility(context.Background(), 1, 404)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
