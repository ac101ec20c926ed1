package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
)

// LeaveRepository leave request data access.
type LeaveRepository interface {
	Create(ctx context.Context, leave *model.Leave) error
	GetByID(ctx context.Context, id string) (*model.Leave, error)
	ListByStudent(ctx context.Context, studentID string, status string) ([]model.Leave, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Leave, int64, error)
	// Review records a decision on a pending request. A request that is no longer pending
	// yields pkgerrors.ErrOptimisticLock.
	Review(ctx context.Context, leave *model.Leave) error
}

type leaveRepo struct {
	db *gorm.DB
}

// NewLeaveRepo creates a LeaveRepository.
func NewLeaveRepo(db *gorm.DB) LeaveRepository {
	return &leaveRepo{db: db}
}

func (r *leaveRepo) Create(ctx context.Context, leave *model.Leave) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

func (r *leaveRepo) GetByID(ctx context.Context, id string) (*model.Leave, error) {
	var leave model.Leave
	err := r.db.WithContext(ctx).
		Where("leave_id = ?", id).
		First(&leave).Error
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRepo) ListByStudent(ctx context.Context, studentID string, status string) ([]model.Leave, error) {
	var leaves []model.Leave
	db := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("from_date DESC").Find(&leaves).Error
	return leaves, err
}

func (r *leaveRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Leave, int64, error) {
	var leaves []model.Leave
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Leave{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&leaves).Error; err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

func (r *leaveRepo) Review(ctx context.Context, leave *model.Leave) error {
	result := r.db.WithContext(ctx).
		Model(&model.Leave{}).
		Where("leave_id = ? AND status = ?", leave.LeaveID, model.LeavePending).
		Updates(map[string]interface{}{
			"status":      leave.Status,
			"reviewed_by": leave.ReviewedBy,
			"review_note": leave.ReviewNote,
			"reviewed_at": leave.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
