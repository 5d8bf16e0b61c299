package models

import "time"

// CaseNote is a free-text note attached to a case. Immutable once created.
type CaseNote struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CaseID    uint   `gorm:"index;not null"`
	AuthorID  uint   `gorm:"index;not null"`
	Author    *User  `gorm:"foreignKey:AuthorID;references:ID"`
	Note      string `gorm:"type:text;not null"`
}
