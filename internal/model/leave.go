package model

import (
	"time"

	"gorm.io/gorm"
)

// Leave statuses.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// Leave leave_requests table.
type Leave struct {
	LeaveID    string     `gorm:"type:varchar(36);primaryKey"                  json:"leaveId"`
	StudentID  string     `gorm:"type:varchar(128);not null;index"             json:"studentId"`
	FromDate   time.Time  `gorm:"type:date;not null"                           json:"fromDate"`
	ToDate     time.Time  `gorm:"type:date;not null"                           json:"toDate"`
	Reason     string     `gorm:"type:text;not null"                           json:"reason"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending'"  json:"status"`
	ReviewedBy *string    `gorm:"type:varchar(128)"                            json:"reviewedBy,omitempty"`
	ReviewNote string     `gorm:"type:text"                                    json:"reviewNote,omitempty"`
	ReviewedAt *time.Time `                                                    json:"reviewedAt,omitempty"`
	BaseModel
}

// TableName table name.
func (Leave) TableName() string { return "leave_requests" }

// BeforeCreate assigns a generated id.
func (l *Leave) BeforeCreate(_ *gorm.DB) error {
	if l.LeaveID == "" {
		l.LeaveID = NewID()
	}
	return nil
}
