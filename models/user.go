package models

import (
	"time"
)

// User model. Email is the login identity; the role governs which operations
// the user may invoke.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string `gorm:"size:64;not null;uniqueIndex"`
	Email          string `gorm:"size:255;not null;uniqueIndex"`
	HashedPassword []byte `gorm:"not null"`
	// Active indicates whether the account may log in. Admin actions flip this
	// instead of physically deleting the record.
	Active bool  `gorm:"default:true;not null"`
	RoleID *uint `gorm:"index"`
	Role   Role  `gorm:"foreignKey:RoleID;references:ID"`

	FiledCases    []Case     `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AssignedCases []Case     `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Evidence      []Evidence `gorm:"foreignKey:UploaderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Documents     []Document `gorm:"foreignKey:UploaderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// RoleName returns the resolved role name or "" when no role is attached.
func (u *User) RoleName() string {
	return u.Role.Name
}
