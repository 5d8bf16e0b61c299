package models

import "time"

// Case is a filed judicial matter tracked through a status lifecycle. The
// creator is the civilian who filed it; the assignee is set by admin roles.
type Case struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:100;default:General"`
	Notes       string `gorm:"type:text"`
	Status      string `gorm:"size:32;not null;default:PENDING;index"`

	CreatedByID  *uint `gorm:"index"`
	CreatedBy    *User `gorm:"foreignKey:CreatedByID;references:ID"`
	AssignedToID *uint `gorm:"index"`
	AssignedTo   *User `gorm:"foreignKey:AssignedToID;references:ID"`

	// Children removed together with the case.
	CaseNotes []CaseNote `gorm:"foreignKey:CaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Evidence  []Evidence `gorm:"foreignKey:CaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Documents []Document `gorm:"foreignKey:CaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Hearings  []Hearing  `gorm:"foreignKey:CaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Payments  []Payment  `gorm:"foreignKey:CaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
