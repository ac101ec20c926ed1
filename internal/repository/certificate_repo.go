package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
)

// CertificateRepository certificate request data access.
type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	GetByID(ctx context.Context, id string) (*model.Certificate, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Certificate, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Certificate, int64, error)
	// Decide moves a requested certificate to issued or rejected. A request that was already
	// decided yields pkgerrors.ErrOptimisticLock.
	Decide(ctx context.Context, cert *model.Certificate) error
}

type certificateRepo struct {
	db *gorm.DB
}

// NewCertificateRepo creates a CertificateRepository.
func NewCertificateRepo(db *gorm.DB) CertificateRepository {
	return &certificateRepo{db: db}
}

func (r *certificateRepo) Create(ctx context.Context, cert *model.Certificate) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *certificateRepo) GetByID(ctx context.Context, id string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.WithContext(ctx).
		Where("certificate_id = ?", id).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Certificate, error) {
	var list []model.Certificate
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *certificateRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Certificate, int64, error) {
	var list []model.Certificate
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Certificate{})
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

func (r *certificateRepo) Decide(ctx context.Context, cert *model.Certificate) error {
	result := r.db.WithContext(ctx).
		Model(&model.Certificate{}).
		Where("certificate_id = ? AND status = ?", cert.CertificateID, model.CertificateRequested).
		Updates(map[string]interface{}{
			"status":       cert.Status,
			"serial_no":    cert.SerialNo,
			"document_url": cert.DocumentURL,
			"remarks":      cert.Remarks,
			"issued_by":    cert.IssuedBy,
			"issued_at":    cert.IssuedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
