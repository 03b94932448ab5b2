package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is file metadata attached to a case.
type Document struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"not null"`
	OriginalName string    `json:"originalName" gorm:"not null"`
	FilePath     string    `json:"filePath" gorm:"not null"`
	FileSize     int64     `json:"fileSize" gorm:"not null"`
	MimeType     string    `json:"mimeType" gorm:"not null"`
	CaseID       string    `json:"caseId" gorm:"size:36;not null;index"`
	UploadedBy   string    `json:"uploadedBy" gorm:"size:36;not null;index"`
	UploadedAt   time.Time `json:"uploadedAt" gorm:"not null;index"`
	StorageKey   string    `json:"-"`
	PageCount    int       `json:"pageCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	return nil
}

func (Document) TableName() string {
	return "documents"
}
