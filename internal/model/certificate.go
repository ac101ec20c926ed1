package model

import (
	"time"

	"gorm.io/gorm"
)

// Certificate request statuses.
const (
	CertificateRequested = "requested"
	CertificateIssued    = "issued"
	CertificateRejected  = "rejected"
)

// Certificate certificates table. The document itself lives in external storage; only its URL is kept.
type Certificate struct {
	CertificateID string     `gorm:"type:varchar(36);primaryKey"                   json:"certificateId"`
	StudentID     string     `gorm:"type:varchar(128);not null;index"              json:"studentId"`
	Type          string     `gorm:"type:varchar(50);not null"                     json:"type"`
	Purpose       string     `gorm:"type:varchar(255);not null"                    json:"purpose"`
	Status        string     `gorm:"type:varchar(20);not null;default:'requested'" json:"status"`
	SerialNo      *string    `gorm:"type:varchar(40);uniqueIndex"                  json:"serialNo,omitempty"`
	DocumentURL   string     `gorm:"type:varchar(500)"                             json:"documentUrl,omitempty"`
	Remarks       string     `gorm:"type:text"                                     json:"remarks,omitempty"`
	IssuedBy      *string    `gorm:"type:varchar(128)"                             json:"issuedBy,omitempty"`
	IssuedAt      *time.Time `                                                     json:"issuedAt,omitempty"`
	BaseModel
}

// TableName table name.
func (Certificate) TableName() string { return "certificates" }

// BeforeCreate assigns a generated id.
func (c *Certificate) BeforeCreate(_ *gorm.DB) error {
	if c.CertificateID == "" {
		c.CertificateID = NewID()
	}
	return nil
}
