package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
)

// MarkFilter list filters; ids are already resolved.
type MarkFilter struct {
	StudentID  string
	SubjectID  string
	Assessment string
}

// MarkRepository mark data access.
type MarkRepository interface {
	// Upsert stores the mark keyed by (student, subject, assessment) and returns the stored row.
	Upsert(ctx context.Context, mark *model.Mark) (*model.Mark, error)
	GetByID(ctx context.Context, id string) (*model.Mark, error)
	List(ctx context.Context, filter MarkFilter, offset, limit int) ([]model.Mark, int64, error)
	ListAll(ctx context.Context, filter MarkFilter) ([]model.Mark, error)
	// Update applies an optimistic-lock update against mark.Version.
	Update(ctx context.Context, mark *model.Mark) error
	Delete(ctx context.Context, id string) error
}

type markRepo struct {
	db *gorm.DB
}

// NewMarkRepo creates a MarkRepository.
func NewMarkRepo(db *gorm.DB) MarkRepository {
	return &markRepo{db: db}
}

func (r *markRepo) Upsert(ctx context.Context, mark *model.Mark) (*model.Mark, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "subject_id"}, {Name: "assessment"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score":       mark.Score,
				"max_score":   mark.MaxScore,
				"remarks":     mark.Remarks,
				"recorded_by": mark.RecordedBy,
				"updated_at":  time.Now(),
				"version":     gorm.Expr("marks.version + 1"),
			}),
		}).
		Create(mark).Error
	if err != nil {
		return nil, err
	}

	var stored model.Mark
	err = r.db.WithContext(ctx).
		Where("student_id = ? AND subject_id = ? AND assessment = ?", mark.StudentID, mark.SubjectID, mark.Assessment).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *markRepo) GetByID(ctx context.Context, id string) (*model.Mark, error) {
	var mark model.Mark
	err := r.db.WithContext(ctx).
		Where("mark_id = ?", id).
		First(&mark).Error
	if err != nil {
		return nil, err
	}
	return &mark, nil
}

func (r *markRepo) filtered(ctx context.Context, filter MarkFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Mark{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != "" {
		db = db.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Assessment != "" {
		db = db.Where("assessment = ?", filter.Assessment)
	}
	return db
}

func (r *markRepo) List(ctx context.Context, filter MarkFilter, offset, limit int) ([]model.Mark, int64, error) {
	var marks []model.Mark
	var total int64

	db := r.filtered(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("updated_at DESC").
		Find(&marks).Error; err != nil {
		return nil, 0, err
	}
	return marks, total, nil
}

func (r *markRepo) ListAll(ctx context.Context, filter MarkFilter) ([]model.Mark, error) {
	var marks []model.Mark
	err := r.filtered(ctx, filter).
		Order("subject_id ASC, student_id ASC, assessment ASC").
		Find(&marks).Error
	return marks, err
}

func (r *markRepo) Update(ctx context.Context, mark *model.Mark) error {
	oldVersion := mark.Version
	result := r.db.WithContext(ctx).
		Model(mark).
		Where("mark_id = ? AND version = ?", mark.MarkID, oldVersion).
		Updates(map[string]interface{}{
			"score":       mark.Score,
			"max_score":   mark.MaxScore,
			"remarks":     mark.Remarks,
			"recorded_by": mark.RecordedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	mark.Version = oldVersion + 1
	return nil
}

func (r *markRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("mark_id = ?", id).
		Delete(&model.Mark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
