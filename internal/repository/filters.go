package repository

import (
	"time"

	"github.com/legalcms/backend/internal/models"
)

// Every non-empty field of a filter must match. Empty fields are ignored.

type UserFilter struct {
	Role models.UserRole
}

type CaseFilter struct {
	Status   models.CaseStatus
	ClientID string
	StaffID  string
}

type AppointmentFilter struct {
	Status   models.AppointmentStatus
	ClientID string
	StaffID  string
	CaseID   string
	// Day restricts results to [Day.From, Day.To).
	Day *DayRange
}

type DocumentFilter struct {
	CaseID     string
	UploadedBy string
}

// DayRange is one calendar day in some location, expressed in UTC.
type DayRange struct {
	From time.Time
	To   time.Time
}

// CalendarDay returns the day containing t as seen in loc.
func CalendarDay(t time.Time, loc *time.Location) DayRange {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayRange{From: start.UTC(), To: start.AddDate(0, 0, 1).UTC()}
}

// Contains reports whether t falls inside the half-open day.
func (d DayRange) Contains(t time.Time) bool {
	return !t.Before(d.From) && t.Before(d.To)
}
