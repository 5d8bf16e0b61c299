package models

import "time"

// Document is a filed paper (petition, order copy, affidavit) attached to a
// case. Same storage scheme as Evidence but without the review workflow.
type Document struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CaseID      uint   `gorm:"index;not null"`
	UploaderID  uint   `gorm:"index;not null"`
	Uploader    *User  `gorm:"foreignKey:UploaderID;references:ID"`
	Filename    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512;not null"`
	FileType    string `gorm:"size:128"`
	Description string `gorm:"type:text"`
	Checksum    string `gorm:"size:64"`
}
