package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/models"
)

// LateApprovalRepository defines data operations for late-submission
// approvals. Replace is the only write path, so a pair never holds more than
// one approval row.
type LateApprovalRepository interface {
	Replace(ctx context.Context, approval *models.LateApproval) error
	GetActive(ctx context.Context, userID, assignmentID uint, reference time.Time) (models.LateApproval, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.LateApproval, error)
}

type lateApprovalRepository struct {
	db *gorm.DB
}

// NewLateApprovalRepository instantiates the repository.
func NewLateApprovalRepository(db *gorm.DB) LateApprovalRepository {
	return &lateApprovalRepository{db: db}
}

// Replace deletes any prior approval for the (user, assignment) pair and
// inserts the new one in a single transaction. Last writer wins.
func (r *lateApprovalRepository) Replace(ctx context.Context, approval *models.LateApproval) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ?", approval.UserID).
			Where("assignment_id = ?", approval.AssignmentID).
			Delete(&models.LateApproval{}).Error; err != nil {
			return err
		}
		return tx.Create(approval).Error
	})
}

func (r *lateApprovalRepository) GetActive(ctx context.Context, userID, assignmentID uint, reference time.Time) (models.LateApproval, error) {
	var approval models.LateApproval
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("assignment_id = ?", assignmentID).
		Where("approved_until > ?", reference.UTC()).
		First(&approval).Error; err != nil {
		return models.LateApproval{}, err
	}
	return approval, nil
}

func (r *lateApprovalRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.LateApproval, error) {
	var approvals []models.LateApproval
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at DESC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

// ExtensionRequestRepository defines data operations for extension requests.
// Multiple requests per pair may coexist; status is the only mutable field.
type ExtensionRequestRepository interface {
	Create(ctx context.Context, request *models.ExtensionRequest) error
	GetByID(ctx context.Context, id uint) (models.ExtensionRequest, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.ExtensionRequest, error)
	UpdateStatus(ctx context.Context, id uint, status string) (models.ExtensionRequest, error)
}

type extensionRequestRepository struct {
	db *gorm.DB
}

// NewExtensionRequestRepository instantiates the repository.
func NewExtensionRequestRepository(db *gorm.DB) ExtensionRequestRepository {
	return &extensionRequestRepository{db: db}
}

func (r *extensionRequestRepository) Create(ctx context.Context, request *models.ExtensionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *extensionRequestRepository) GetByID(ctx context.Context, id uint) (models.ExtensionRequest, error) {
	var request models.ExtensionRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return models.ExtensionRequest{}, err
	}
	return request, nil
}

func (r *extensionRequestRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.ExtensionRequest, error) {
	var requests []models.ExtensionRequest
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *extensionRequestRepository) UpdateStatus(ctx context.Context, id uint, status string) (models.ExtensionRequest, error) {
	var request models.ExtensionRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return models.ExtensionRequest{}, err
	}

	request.Status = status
	if err := r.db.WithContext(ctx).Save(&request).Error; err != nil {
		return models.ExtensionRequest{}, err
	}
	return request, nil
}
