package model

import "gorm.io/gorm"

// Subject subjects table. Code is a secondary lookup key, not guaranteed unique across sections.
type Subject struct {
	SubjectID string `gorm:"type:varchar(36);primaryKey"      json:"subjectId"`
	Code      string `gorm:"type:varchar(50);not null;index"  json:"code"`
	Name      string `gorm:"type:varchar(150);not null"       json:"name"`
	Section   string `gorm:"type:varchar(20);not null;default:''" json:"section"`
	BaseModel
}

// TableName table name.
func (Subject) TableName() string { return "subjects" }

// BeforeCreate assigns a generated id.
func (s *Subject) BeforeCreate(_ *gorm.DB) error {
	if s.SubjectID == "" {
		s.SubjectID = NewID()
	}
	return nil
}
