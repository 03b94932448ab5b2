package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "Open"
	CaseStatusInProgress CaseStatus = "In Progress"
	CaseStatusClosed     CaseStatus = "Closed"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusInProgress, CaseStatusClosed:
		return true
	}
	return false
}

// Case is a legal matter tying one client to one staff member.
type Case struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CaseNumber  string     `json:"caseNumber" gorm:"uniqueIndex;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	Status      CaseStatus `json:"status" gorm:"not null;default:'Open';index"`
	ClientID    string     `json:"clientId" gorm:"size:36;not null;index"`
	StaffID     string     `json:"staffId" gorm:"size:36;not null;index"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = CaseStatusOpen
	}
	return nil
}

func (Case) TableName() string {
	return "cases"
}
