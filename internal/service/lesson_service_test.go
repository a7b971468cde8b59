package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
)

func newLessonService(db *gorm.DB) LessonService {
	return NewLessonService(
		repository.NewLessonRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		newProgressService(db, nil),
		nil,
		testValidator(),
		testLogger(),
	)
}

func TestLessonCompleteUpdatesEnrollmentAndProgress(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Lesson Course")
	first := createLesson(t, db, course.ID, 1)
	second := createLesson(t, db, course.ID, 2)

	svc := newLessonService(db)
	progress, err := svc.Complete(context.Background(), 1, first.ID)
	require.NoError(t, err)
	require.InDelta(t, 50.0, progress.LessonProgress, 0.001)
	require.InDelta(t, 50.0, progress.OverallProgress, 0.001)
	require.Equal(t, models.EnrollmentStatusInProgress, progress.Status)

	var enrollment models.Enrollment
	require.NoError(t, db.
		Where("user_id = ? AND course_id = ?", 1, course.ID).
		First(&enrollment).Error)
	require.NotNil(t, enrollment.CurrentLessonID)
	require.Equal(t, first.ID, *enrollment.CurrentLessonID)

	progress, err = svc.Complete(context.Background(), 1, second.ID)
	require.NoError(t, err)
	require.InDelta(t, 100.0, progress.LessonProgress, 0.001)
	require.Equal(t, models.EnrollmentStatusCompleted, progress.Status)
}

func TestLessonCompleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Repeat Lessons")
	lesson := createLesson(t, db, course.ID, 1)
	createLesson(t, db, course.ID, 2)

	svc := newLessonService(db)
	first, err := svc.Complete(context.Background(), 1, lesson.ID)
	require.NoError(t, err)
	second, err := svc.Complete(context.Background(), 1, lesson.ID)
	require.NoError(t, err)

	require.Equal(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.LessonCompletion{}).
		Where("user_id = ? AND lesson_id = ?", 1, lesson.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLessonCompleteUnknownLesson(t *testing.T) {
	db := newTestDB(t)

	svc := newLessonService(db)
	_, err := svc.Complete(context.Background(), 1, 404)
	require.ErrorIs(t, err, ErrLessonNotFound)
}

func TestLessonCreateRequiresExistingCourse(t *testing.T) {
	db := newTestDB(t)

	svc := newLessonService(db)
	_, err := svc.Create(context.Background(), dto.LessonCreateRequest{
		CourseID: 404,
		Title:    "Orphan Lesson",
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestLessonListByCourseOrdersByPosition(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Ordered Course")
	createLesson(t, db, course.ID, 2)
	createLesson(t, db, course.ID, 1)

	svc := newLessonService(db)
	lessons, err := svc.ListByCourse(context.Background(), course.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	require.Equal(t, 1, lessons[0].Position)
	require.Equal(t, 2, lessons[1].Position)
}
