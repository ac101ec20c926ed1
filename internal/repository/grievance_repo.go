package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
)

// GrievanceRepository grievance data access.
type GrievanceRepository interface {
	Create(ctx context.Context, g *model.Grievance) error
	GetByID(ctx context.Context, id string) (*model.Grievance, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Grievance, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Grievance, int64, error)
	Update(ctx context.Context, g *model.Grievance) error
}

type grievanceRepo struct {
	db *gorm.DB
}

// NewGrievanceRepo creates a GrievanceRepository.
func NewGrievanceRepo(db *gorm.DB) GrievanceRepository {
	return &grievanceRepo{db: db}
}

func (r *grievanceRepo) Create(ctx context.Context, g *model.Grievance) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *grievanceRepo) GetByID(ctx context.Context, id string) (*model.Grievance, error) {
	var g model.Grievance
	err := r.db.WithContext(ctx).
		Where("grievance_id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *grievanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Grievance, error) {
	var list []model.Grievance
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *grievanceRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Grievance, int64, error) {
	var list []model.Grievance
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Grievance{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *grievanceRepo) Update(ctx context.Context, g *model.Grievance) error {
	return r.db.WithContext(ctx).Save(g).Error
}
