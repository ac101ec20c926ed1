package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
)

// AttendanceFilter list filters; zero values are ignored.
type AttendanceFilter struct {
	StudentID string
	SubjectID string
	From      time.Time
	To        time.Time
}

// AttendanceRepository attendance data access.
type AttendanceRepository interface {
	// Upsert stores one row per (student, subject, date); a repeat overwrites the status.
	// rec is refreshed from the stored row.
	Upsert(ctx context.Context, rec *model.Attendance) error
	List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository.
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, rec *model.Attendance) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "subject_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":      rec.Status,
				"recorded_by": rec.RecordedBy,
				"updated_at":  time.Now(),
			}),
		}).
		Create(rec).Error
	if err != nil {
		return err
	}

	// on conflict the generated id was discarded; reload the surviving row
	var stored model.Attendance
	err = r.db.WithContext(ctx).
		Where("student_id = ? AND subject_id = ? AND date = ?", rec.StudentID, rec.SubjectID, rec.Date).
		First(&stored).Error
	if err != nil {
		return err
	}
	*rec = stored
	return nil
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error) {
	var records []model.Attendance
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Attendance{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != "" {
		db = db.Where("subject_id = ?", filter.SubjectID)
	}
	if !filter.From.IsZero() {
		db = db.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("date <= ?", filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("date DESC, subject_id ASC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}
