package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel audit timestamps embedded by every table.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// VersionedModel adds an optimistic-lock counter.
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// NewID generates a primary key for rows whose id is not supplied by a caller.
func NewID() string {
	return uuid.NewString()
}

// All lists every persisted model, in dependency order, for schema sync on SQLite.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Subject{},
		&Mark{},
		&Attendance{},
		&Leave{},
		&Grievance{},
		&Certificate{},
	}
}
