// Package scheduling decides whether a proposed appointment collides with a
// staff member's existing calendar.
package scheduling

import (
	"time"

	"github.com/legalcms/backend/internal/models"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds the interval covered by an appointment of the given
// length in minutes.
func NewInterval(start time.Time, minutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// Overlaps reports whether a and b share any instant. Intervals that only
// touch at an endpoint do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Candidate is a proposed booking. ExcludeID is the id of the appointment
// being edited, empty on create.
type Candidate struct {
	StaffID   string
	Start     time.Time
	Duration  int
	ExcludeID string
}

func (c Candidate) Interval() Interval {
	return NewInterval(c.Start, c.Duration)
}

// FindConflict returns the first appointment in existing that blocks
// candidate, or nil.
func FindConflict(candidate Candidate, existing []models.Appointment) *models.Appointment {
	want := candidate.Interval()
	for i := range existing {
		a := &existing[i]
		if a.StaffID != candidate.StaffID {
			continue
		}
		if a.Status == models.AppointmentStatusCancelled {
			continue
		}
		if candidate.ExcludeID != "" && a.ID == candidate.ExcludeID {
			continue
		}
		if Overlaps(want, NewInterval(a.Date, a.Duration)) {
			return a
		}
	}
	return nil
}

// HasConflict is the boolean form of FindConflict.
func HasConflict(candidate Candidate, existing []models.Appointment) bool {
	return FindConflict(candidate, existing) != nil
}
