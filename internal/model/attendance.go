package model

import (
	"time"

	"gorm.io/gorm"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Attendance attendance table. One row per (student, subject, date).
type Attendance struct {
	AttendanceID string    `gorm:"type:varchar(36);primaryKey"                                          json:"attendanceId"`
	StudentID    string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_attendance_student_subject_date,priority:1" json:"studentId"`
	SubjectID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendance_student_subject_date,priority:2"  json:"subjectId"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_subject_date,priority:3"         json:"date"`
	Status       string    `gorm:"type:varchar(10);not null"                                            json:"status"`
	RecordedBy   string    `gorm:"type:varchar(128);not null"                                           json:"recordedBy"`
	BaseModel
}

// TableName table name.
func (Attendance) TableName() string { return "attendance" }

// BeforeCreate assigns a generated id.
func (a *Attendance) BeforeCreate(_ *gorm.DB) error {
	if a.AttendanceID == "" {
		a.AttendanceID = NewID()
	}
	return nil
}
