package model

import (
	"time"

	"gorm.io/gorm"
)

// Grievance statuses.
const (
	GrievanceOpen       = "open"
	GrievanceInProgress = "in_progress"
	GrievanceResolved   = "resolved"
)

// Grievance grievances table.
type Grievance struct {
	GrievanceID string     `gorm:"type:varchar(36);primaryKey"              json:"grievanceId"`
	StudentID   string     `gorm:"type:varchar(128);not null;index"         json:"studentId"`
	Category    string     `gorm:"type:varchar(50);not null"                json:"category"`
	Title       string     `gorm:"type:varchar(200);not null"               json:"title"`
	Description string     `gorm:"type:text;not null"                       json:"description"`
	Status      string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Response    string     `gorm:"type:text"                                json:"response,omitempty"`
	RespondedBy *string    `gorm:"type:varchar(128)"                        json:"respondedBy,omitempty"`
	RespondedAt *time.Time `                                                json:"respondedAt,omitempty"`
	BaseModel
}

// TableName table name.
func (Grievance) TableName() string { return "grievances" }

// BeforeCreate assigns a generated id.
func (g *Grievance) BeforeCreate(_ *gorm.DB) error {
	if g.GrievanceID == "" {
		g.GrievanceID = NewID()
	}
	return nil
}
