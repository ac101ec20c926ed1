package model

import (
	"gorm.io/gorm"
)

// Roles. Exactly one per user.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// ValidRole reports whether r is one of the three recognised roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User users table. UserID is either the identity provider subject or a generated id.
// Email is the alternate key and is stored normalized (trimmed, lower-case).
type User struct {
	UserID string `gorm:"type:varchar(128);primaryKey"                json:"userId"`
	Email  string `gorm:"type:varchar(255);not null;uniqueIndex"      json:"email"`
	Name   string `gorm:"type:varchar(100);not null"                  json:"name"`
	Role   string `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	BaseModel
}

// TableName table name.
func (User) TableName() string { return "users" }

// BeforeCreate assigns a generated id when none was supplied.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = NewID()
	}
	return nil
}
