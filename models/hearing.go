package models

import "time"

// Hearing states.
const (
	HearingScheduled = "Scheduled"
	HearingPostponed = "Postponed"
	HearingHeld      = "Held"
)

// Hearing is a scheduled court session tied to exactly one case. The judge is
// optional and assigned after scheduling.
type Hearing struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CaseID        uint      `gorm:"index;not null"`
	Case          *Case     `gorm:"foreignKey:CaseID;references:ID"`
	RegistrarID   uint      `gorm:"index;not null"`
	Registrar     *User     `gorm:"foreignKey:RegistrarID;references:ID"`
	JudgeID       *uint     `gorm:"index"`
	Judge         *User     `gorm:"foreignKey:JudgeID;references:ID"`
	ScheduledDate time.Time `gorm:"not null"`
	Location      string    `gorm:"size:255;not null"`
	Status        string    `gorm:"size:32;not null;default:Scheduled"`
	Notes         string    `gorm:"type:text"`
}
