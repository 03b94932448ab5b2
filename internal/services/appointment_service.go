package services

import (
	"context"
	"errors"
	"time"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/scheduling"
)

type AppointmentInput struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Date        time.Time                `json:"date"`
	Duration    int                      `json:"duration"`
	Status      models.AppointmentStatus `json:"status"`
	ClientID    string                   `json:"clientId"`
	StaffID     string                   `json:"staffId"`
	CaseID      string                   `json:"caseId"`
	Location    string                   `json:"location"`
	Notes       string                   `json:"notes"`
}

// AppointmentUpdate carries the fields to change. Location and notes may be
// cleared by sending an empty string; other blank fields are ignored.
type AppointmentUpdate struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Date        *time.Time                `json:"date"`
	Duration    *int                      `json:"duration"`
	Status      *models.AppointmentStatus `json:"status"`
	ClientID    *string                   `json:"clientId"`
	StaffID     *string                   `json:"staffId"`
	CaseID      *string                   `json:"caseId"`
	Location    *string                   `json:"location"`
	Notes       *string                   `json:"notes"`
}

// AppointmentQuery is a listing request as it arrives from a caller. Date
// is parsed into a calendar day in the service's time zone.
type AppointmentQuery struct {
	Status   models.AppointmentStatus
	ClientID string
	StaffID  string
	CaseID   string
	Date     string
}

type AppointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	cases        repository.CaseRepository
	view         projector
	loc          *time.Location
}

func NewAppointmentService(appointments repository.AppointmentRepository, users repository.UserRepository, cases repository.CaseRepository, loc *time.Location) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{
		appointments: appointments,
		users:        users,
		cases:        cases,
		view:         projector{users: users, cases: cases},
		loc:          loc,
	}
}

func (s *AppointmentService) List(ctx context.Context, actor Actor, q AppointmentQuery) ([]AppointmentView, error) {
	day, err := ParseDay(q.Date, s.loc)
	if err != nil {
		return nil, err
	}
	filter := repository.AppointmentFilter{
		Status:   q.Status,
		ClientID: q.ClientID,
		StaffID:  q.StaffID,
		CaseID:   q.CaseID,
		Day:      day,
	}
	if actor.IsClient() {
		filter.ClientID = actor.ID
	}
	appointments, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch appointments", err)
	}
	return s.view.appointmentViews(ctx, appointments)
}

func (s *AppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound(msgAppointmentMissing)
	}
	if err != nil {
		return nil, internal("Failed to fetch appointment", err)
	}
	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor Actor, id string) (*AppointmentView, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsClient() && a.ClientID != actor.ID {
		return nil, apperrors.NotFound(msgAppointmentMissing)
	}
	return s.single(ctx, *a)
}

func (s *AppointmentService) single(ctx context.Context, a models.Appointment) (*AppointmentView, error) {
	views, err := s.view.appointmentViews(ctx, []models.Appointment{a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// checkSchedule rejects candidate when it overlaps another live appointment
// of the same staff member.
func (s *AppointmentService) checkSchedule(ctx context.Context, candidate scheduling.Candidate) error {
	existing, err := s.appointments.ListActiveByStaff(ctx, candidate.StaffID, candidate.Interval().End)
	if err != nil {
		return internal("Failed to check schedule", err)
	}
	if conflict := scheduling.FindConflict(candidate, existing); conflict != nil {
		logger.Info("Scheduling conflict", map[string]interface{}{
			"staffID":       candidate.StaffID,
			"start":         candidate.Start,
			"conflictingID": conflict.ID,
		})
		return apperrors.Conflict(msgSchedulingConflict)
	}
	return nil
}

func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) (*AppointmentView, error) {
	if err := requireFields(in.Title, in.Description, in.ClientID, in.StaffID); err != nil {
		return nil, err
	}
	if in.Date.IsZero() || in.Duration == 0 {
		return nil, apperrors.Validation(msgMissingFields)
	}
	if err := checkDuration(in.Duration); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.AppointmentStatusScheduled
	}
	if !in.Status.Valid() {
		return nil, apperrors.Validation(msgInvalidStatus)
	}

	clientOK, err := userExists(ctx, s.users, in.ClientID)
	if err != nil {
		return nil, internal("Failed to verify client", err)
	}
	staffOK, err := userExists(ctx, s.users, in.StaffID)
	if err != nil {
		return nil, internal("Failed to verify staff", err)
	}
	if !clientOK || !staffOK {
		return nil, apperrors.NotFound(msgClientOrStaff)
	}

	var caseID *string
	if in.CaseID != "" {
		if _, err := loadCase(ctx, s.cases, in.CaseID, msgCaseNotFound); err != nil {
			return nil, err
		}
		id := in.CaseID
		caseID = &id
	}

	a := &models.Appointment{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date.UTC(),
		Duration:    in.Duration,
		Status:      in.Status,
		ClientID:    in.ClientID,
		StaffID:     in.StaffID,
		CaseID:      caseID,
		Location:    in.Location,
		Notes:       in.Notes,
	}
	if a.Status != models.AppointmentStatusCancelled {
		candidate := scheduling.Candidate{StaffID: a.StaffID, Start: a.Date, Duration: a.Duration}
		if err := s.checkSchedule(ctx, candidate); err != nil {
			return nil, err
		}
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, internal("Failed to create appointment", err)
	}
	logger.Info("Appointment created", map[string]interface{}{
		"appointmentID": a.ID,
		"staffID":       a.StaffID,
		"date":          a.Date,
	})
	return s.single(ctx, *a)
}

func (s *AppointmentService) Update(ctx context.Context, id string, in AppointmentUpdate) (*AppointmentView, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ClientID != nil && *in.ClientID != "" {
		ok, err := userExists(ctx, s.users, *in.ClientID)
		if err != nil {
			return nil, internal("Failed to verify client", err)
		}
		if !ok {
			return nil, apperrors.NotFound(msgClientNotFound)
		}
	}
	if in.StaffID != nil && *in.StaffID != "" {
		ok, err := userExists(ctx, s.users, *in.StaffID)
		if err != nil {
			return nil, internal("Failed to verify staff", err)
		}
		if !ok {
			return nil, apperrors.NotFound(msgStaffNotFound)
		}
	}
	if in.CaseID != nil && *in.CaseID != "" {
		if _, err := loadCase(ctx, s.cases, *in.CaseID, msgCaseNotFound); err != nil {
			return nil, err
		}
	}
	if in.Duration != nil && *in.Duration != 0 {
		if err := checkDuration(*in.Duration); err != nil {
			return nil, err
		}
	}
	if in.Status != nil && *in.Status != "" && !in.Status.Valid() {
		return nil, apperrors.Validation(msgInvalidStatus)
	}

	reschedule := false
	applyString(&a.Title, in.Title)
	applyString(&a.Description, in.Description)
	if in.Date != nil && !in.Date.IsZero() {
		a.Date = in.Date.UTC()
		reschedule = true
	}
	if in.Duration != nil && *in.Duration != 0 {
		a.Duration = *in.Duration
		reschedule = true
	}
	if in.Status != nil && *in.Status != "" {
		// A cancelled appointment coming back to life must fit the calendar again.
		if a.Status == models.AppointmentStatusCancelled && *in.Status != models.AppointmentStatusCancelled {
			reschedule = true
		}
		a.Status = *in.Status
	}
	applyString(&a.ClientID, in.ClientID)
	if applyString(&a.StaffID, in.StaffID) {
		reschedule = true
	}
	if in.CaseID != nil && *in.CaseID != "" {
		caseID := *in.CaseID
		a.CaseID = &caseID
	}
	if in.Location != nil {
		a.Location = *in.Location
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}

	if reschedule && a.Status != models.AppointmentStatusCancelled {
		candidate := scheduling.Candidate{StaffID: a.StaffID, Start: a.Date, Duration: a.Duration, ExcludeID: a.ID}
		if err := s.checkSchedule(ctx, candidate); err != nil {
			return nil, err
		}
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgAppointmentMissing)
		}
		return nil, internal("Failed to update appointment", err)
	}
	logger.Info("Appointment updated", map[string]interface{}{"appointmentID": a.ID})
	return s.single(ctx, *a)
}

func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	err := s.appointments.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(msgAppointmentMissing)
	}
	if err != nil {
		return internal("Failed to delete appointment", err)
	}
	logger.Info("Appointment deleted", map[string]interface{}{"appointmentID": id})
	return nil
}
