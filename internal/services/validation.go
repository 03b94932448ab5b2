package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
)

const (
	msgMissingFields      = "Missing required fields"
	msgCaseNumberTaken    = "Case number already exists"
	msgEmailTaken         = "User with this email already exists"
	msgClientOrStaff      = "Client or staff not found"
	msgClientNotFound     = "Client not found"
	msgStaffNotFound      = "Staff not found"
	msgCaseNotFound       = "Case not found"
	msgUserNotFound       = "User not found"
	msgRecipientNotFound  = "Recipient not found"
	msgAppointmentMissing = "Appointment not found"
	msgDocumentMissing    = "Document not found"
	msgSchedulingConflict = "Scheduling conflict: Staff member has another appointment at this time"
	msgInvalidDuration    = "Duration must be at least 15 minutes"
	msgDurationTooLong    = "Duration must be at most 24 hours"
	msgInvalidStatus      = "Invalid status"
	msgInvalidRole        = "Invalid role. Must be ADMIN, STAFF, or CLIENT"
	msgInvalidDate        = "Invalid date. Use YYYY-MM-DD or an RFC 3339 timestamp"
)

// Actor is the authenticated caller a service call runs on behalf of.
type Actor struct {
	ID   string
	Role models.UserRole
}

func (a Actor) IsClient() bool {
	return a.Role == models.RoleClient
}

// requireFields fails with the shared message when any value is blank.
func requireFields(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return apperrors.Validation(msgMissingFields)
		}
	}
	return nil
}

// applyString copies a provided, non-blank value over dst. Blank values
// leave the stored field unchanged.
func applyString(dst *string, v *string) bool {
	if v == nil || strings.TrimSpace(*v) == "" {
		return false
	}
	*dst = *v
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userExists reports whether id resolves to a stored user.
func userExists(ctx context.Context, users repository.UserRepository, id string) (bool, error) {
	_, err := users.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	}
	return false, err
}

// loadCase fetches a case, mapping a missing row to msg.
func loadCase(ctx context.Context, cases repository.CaseRepository, id, msg string) (*models.Case, error) {
	c, err := cases.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound(msg)
	}
	if err != nil {
		return nil, internal("Failed to load case", err)
	}
	return c, nil
}

// checkDuration enforces the bookable range. The upper bound keeps the
// interval end from overflowing time.Duration.
func checkDuration(minutes int) error {
	switch {
	case minutes < models.MinAppointmentMinutes:
		return apperrors.Validation(msgInvalidDuration)
	case minutes > models.MaxAppointmentMinutes:
		return apperrors.Validation(msgDurationTooLong)
	}
	return nil
}

// internal hides an unexpected failure behind msg. The caller that turns it
// into a response or exit status logs it.
func internal(msg string, err error) error {
	return apperrors.Internal(msg, err)
}

// ParseDay interprets a date query value as a calendar day in loc. It
// accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDay(value string, loc *time.Location) (*repository.DayRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		day := repository.CalendarDay(t, loc)
		return &day, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		day := repository.CalendarDay(t, loc)
		return &day, nil
	}
	return nil, apperrors.Validation(msgInvalidDate)
}
