package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// AttemptRepository defines data operations for quiz attempts. Attempts are
// append-only; there is no update path.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	ListByQuiz(ctx context.Context, quizID uint, userID *uint) ([]models.QuizAttempt, error)
	ListByUser(ctx context.Context, userID uint) ([]models.QuizAttempt, error)
	CountDistinctAttempted(ctx context.Context, userID, courseID uint) (int64, error)
	NextAttemptNumber(ctx context.Context, userID, quizID uint) (int, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) ListByQuiz(ctx context.Context, quizID uint, userID *uint) ([]models.QuizAttempt, error) {
	query := r.db.WithContext(ctx).Where("quiz_id = ?", quizID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var attempts []models.QuizAttempt
	if err := query.Order("completed_at DESC").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) ListByUser(ctx context.Context, userID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// CountDistinctAttempted counts the course quizzes the user has at least one
// attempt for, pass or fail.
func (r *attemptRepository) CountDistinctAttempted(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Where("quiz_id IN (?)", r.db.Model(&models.Quiz{}).Select("id").Where("course_id = ?", courseID)).
		Distinct("quiz_id").
		Count(&count).Error
	return count, err
}

// NextAttemptNumber increments the per-(user, quiz) counter with a single
// conditional upsert and returns the new value. Two concurrent submissions
// for the same pair cannot observe the same number.
func (r *attemptRepository) NextAttemptNumber(ctx context.Context, userID, quizID uint) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO attempt_counters (user_id, quiz_id, value, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, quiz_id)
		DO UPDATE SET value = attempt_counters.value + 1, updated_at = excluded.updated_at
		RETURNING value`,
		userID, quizID, time.Now().UTC(),
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
