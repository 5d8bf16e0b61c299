package models

import "time"

// Review states for uploaded evidence.
const (
	EvidencePending     = "PENDING"
	EvidenceApproved    = "APPROVED"
	EvidenceRejected    = "REJECTED"
	EvidenceUnderReview = "UNDER_REVIEW"
)

// Evidence is uploaded-file metadata attached to a case. The file bytes live
// on disk under the upload base; only the path is stored here.
type Evidence struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CaseID     uint   `gorm:"index;not null"`
	UploaderID uint   `gorm:"index;not null"`
	Uploader   *User  `gorm:"foreignKey:UploaderID;references:ID"`
	Filename   string `gorm:"size:255;not null"`
	StorePath  string `gorm:"column:store_path;size:512;not null"`
	FileType   string `gorm:"size:128"` // MIME type reported by the client
	Category   string `gorm:"size:100;default:General"`
	Status     string `gorm:"size:32;not null;default:PENDING"`
	Remarks    string `gorm:"type:text"`
	// Checksum is filled in asynchronously by the integrity watcher.
	Checksum string `gorm:"size:64"`
}

func (Evidence) TableName() string {
	return "evidence"
}
