package models

import "time"

// Payment states.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Payment is a fee or fine attached to a case, made by a payer user.
type Payment struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CaseID      uint    `gorm:"index;not null"`
	PayerID     uint    `gorm:"index;not null"`
	Payer       *User   `gorm:"foreignKey:PayerID;references:ID"`
	Amount      float64 `gorm:"not null"`
	PaymentType string  `gorm:"size:50;not null"` // FILING_FEE, FINE, PENALTY
	Status      string  `gorm:"size:32;not null;default:PENDING"`
	Reference   string  `gorm:"size:120"`
}
