package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// LessonRepository defines data operations for lessons and their completions.
type LessonRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	MarkCompleted(ctx context.Context, userID, lessonID, courseID uint, at time.Time) error
	ListCompletedLessonIDs(ctx context.Context, userID, courseID uint) ([]uint, error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository instantiates the repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

// MarkCompleted records the completion idempotently: repeating the call for
// the same (user, lesson) pair is a no-op.
func (r *lessonRepository) MarkCompleted(ctx context.Context, userID, lessonID, courseID uint, at time.Time) error {
	completion := models.LessonCompletion{
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    courseID,
		CompletedAt: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&completion).Error
}

func (r *lessonRepository) ListCompletedLessonIDs(ctx context.Context, userID, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.LessonCompletion{}).
		Where("user_id = ?", userID).
		Where("course_id = ?", courseID).
		Order("completed_at ASC").
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
