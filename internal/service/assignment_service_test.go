package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

func newAssignmentService(db *gorm.DB) AssignmentService {
	return NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewCourseRepository(db),
		nil,
		testValidator(),
		testLogger(),
	)
}

func TestAssignmentCreateParsesDueDate(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Deadlines")

	svc := newAssignmentService(db)
	assignment, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		CourseID: course.ID,
		Title:    "Final Essay",
		DueDate:  "2024-01-10T23:59:59Z",
		MaxScore: 100,
	})
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC), assignment.DueDate)
	require.InDelta(t, 100.0, assignment.MaxScore, 0.001)
}

func TestAssignmentCreateUnknownCourse(t *testing.T) {
	db := newTestDB(t)

	svc := newAssignmentService(db)
	_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		CourseID: 404,
		Title:    "Orphan",
		DueDate:  "2024-01-10T23:59:59Z",
		MaxScore: 50,
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAssignmentUpdateMovesDueDateOnly(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Deadlines")
	assignment := createAssignment(t, db, course.ID, dueDate)

	newDue := "2024-02-01T00:00:00Z"
	svc := newAssignmentService(db)
	updated, err := svc.Update(context.Background(), assignment.ID, dto.AssignmentUpdateRequest{
		DueDate: &newDue,
	})
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), updated.DueDate)
	require.Equal(t, assignment.Title, updated.Title)
}

func TestGradeSubmissionRecordsGradeAndFeedback(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Grading")
	assignment := createAssignment(t, db, course.ID, dueDate)

	submission := models.Submission{
		UserID:       1,
		AssignmentID: assignment.ID,
		Kind:         models.SubmissionKindText,
		Content:      "My essay.",
		SubmittedAt:  beforeDue,
	}
	require.NoError(t, db.Create(&submission).Error)

	svc := newAssignmentService(db)
	graded, err := svc.GradeSubmission(context.Background(), submission.ID, dto.GradeSubmissionRequest{
		Grade:    85,
		Feedback: "Well structured.",
	})
	require.NoError(t, err)

	require.NotNil(t, graded.Grade)
	require.InDelta(t, 85.0, *graded.Grade, 0.001)
	require.Equal(t, "Well structured.", graded.Feedback)
	require.NotNil(t, graded.GradedAt)
}

func TestGradeSubmissionRejectsGradeAboveMaxScore(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Grading")
	assignment := createAssignment(t, db, course.ID, dueDate)

	submission := models.Submission{
		UserID:       1,
		AssignmentID: assignment.ID,
		Kind:         models.SubmissionKindText,
		SubmittedAt:  beforeDue,
	}
	require.NoError(t, db.Create(&submission).Error)

	svc := newAssignmentService(db)
	_, err := svc.GradeSubmission(context.Background(), submission.ID, dto.GradeSubmissionRequest{Grade: 120})
	require.ErrorIs(t, err, ErrGradeOutOfRange)
}

func TestGradeSubmissionUnknownSubmission(t *testing.T) {
	db := newTestDB(t)

	svc := newAssignmentService(db)
	_, err := svc.GradeSubmission(context.Background(), 404, dto.GradeSubmissionRequest{Grade: 10})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestAssignmentListByCourse(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Multi")
	other := createCourse(t, db, "Other")
	createAssignment(t, db, course.ID, dueDate)
	createAssignment(t, db, course.ID, graceLimit)
	createAssignment(t, db, other.ID, dueDate)

	svc := newAssignmentService(db)
	assignments, err := svc.ListByCourse(context.Background(), course.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
}
