package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

const (
	// MinAppointmentMinutes is the shortest bookable appointment.
	MinAppointmentMinutes = 15
	// MaxAppointmentMinutes is the longest bookable appointment.
	MaxAppointmentMinutes = 24 * 60
)

type Appointment struct {
	ID          string            `json:"id" gorm:"primaryKey;size:36"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Date        time.Time         `json:"date" gorm:"column:scheduled_at;not null;index"`
	Duration    int               `json:"duration" gorm:"not null"` // minutes
	Status      AppointmentStatus `json:"status" gorm:"not null;default:'Scheduled';index"`
	ClientID    string            `json:"clientId" gorm:"size:36;not null;index"`
	StaffID     string            `json:"staffId" gorm:"size:36;not null;index"`
	CaseID      *string           `json:"caseId,omitempty" gorm:"size:36;index"`
	Location    string            `json:"location"`
	Notes       string            `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// End is the exclusive end of the appointment.
func (a Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.Duration) * time.Minute)
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = AppointmentStatusScheduled
	}
	return nil
}

func (Appointment) TableName() string {
	return "appointments"
}
