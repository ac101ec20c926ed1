package model

import "gorm.io/gorm"

// Mark marks table. One row per (student, subject, assessment).
type Mark struct {
	MarkID     string  `gorm:"type:varchar(36);primaryKey"                                                  json:"markId"`
	StudentID  string  `gorm:"type:varchar(128);not null;uniqueIndex:idx_marks_student_subject_assessment,priority:1" json:"studentId"`
	SubjectID  string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_marks_student_subject_assessment,priority:2;index" json:"subjectId"`
	Assessment string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_marks_student_subject_assessment,priority:3" json:"assessment"`
	Score      float64 `gorm:"not null"                                                                     json:"score"`
	MaxScore   float64 `gorm:"not null;default:100"                                                         json:"maxScore"`
	Remarks    string  `gorm:"type:text"                                                                    json:"remarks,omitempty"`
	RecordedBy string  `gorm:"type:varchar(128);not null"                                                   json:"recordedBy"`
	VersionedModel
}

// TableName table name.
func (Mark) TableName() string { return "marks" }

// BeforeCreate assigns a generated id.
func (m *Mark) BeforeCreate(_ *gorm.DB) error {
	if m.MarkID == "" {
		m.MarkID = NewID()
	}
	return nil
}
