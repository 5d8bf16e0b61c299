package models

import "time"

// Role names seeded into the roles master table. These are the only roles the
// system recognizes.
const (
	RoleCivilian   = "CIVILIAN"
	RoleRegistrar  = "REGISTRAR"
	RoleJudge      = "JUDGE"
	RoleProsecutor = "PROSECUTOR"
)

// Role represents user roles with numeric primary key
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}

// KnownRole reports whether name is one of the seeded role names.
func KnownRole(name string) bool {
	switch name {
	case RoleCivilian, RoleRegistrar, RoleJudge, RoleProsecutor:
		return true
	}
	return false
}
