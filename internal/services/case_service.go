package services

import (
	"context"
	"errors"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
)

type CaseInput struct {
	CaseNumber  string            `json:"caseNumber"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.CaseStatus `json:"status"`
	ClientID    string            `json:"clientId"`
	StaffID     string            `json:"staffId"`
}

// CaseUpdate carries the fields a caller wants to change. Absent or blank
// fields keep their stored value.
type CaseUpdate struct {
	CaseNumber  *string            `json:"caseNumber"`
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.CaseStatus `json:"status"`
	ClientID    *string            `json:"clientId"`
	StaffID     *string            `json:"staffId"`
}

type CaseService struct {
	cases repository.CaseRepository
	users repository.UserRepository
	view  projector
}

func NewCaseService(cases repository.CaseRepository, users repository.UserRepository) *CaseService {
	return &CaseService{
		cases: cases,
		users: users,
		view:  projector{users: users, cases: cases},
	}
}

// List returns cases matching filter. Clients only ever see their own.
func (s *CaseService) List(ctx context.Context, actor Actor, filter repository.CaseFilter) ([]CaseView, error) {
	if actor.IsClient() {
		filter.ClientID = actor.ID
	}
	cases, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch cases", err)
	}
	return s.view.caseViews(ctx, cases)
}

func (s *CaseService) Get(ctx context.Context, actor Actor, id string) (*CaseView, error) {
	c, err := loadCase(ctx, s.cases, id, msgCaseNotFound)
	if err != nil {
		return nil, err
	}
	if actor.IsClient() && c.ClientID != actor.ID {
		return nil, apperrors.NotFound(msgCaseNotFound)
	}
	return s.single(ctx, *c)
}

func (s *CaseService) single(ctx context.Context, c models.Case) (*CaseView, error) {
	views, err := s.view.caseViews(ctx, []models.Case{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CaseService) Create(ctx context.Context, in CaseInput) (*CaseView, error) {
	if err := requireFields(in.CaseNumber, in.Title, in.Description, in.ClientID, in.StaffID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.CaseStatusOpen
	}
	if !in.Status.Valid() {
		return nil, apperrors.Validation(msgInvalidStatus)
	}

	if _, err := s.cases.GetByCaseNumber(ctx, in.CaseNumber); err == nil {
		return nil, apperrors.Conflict(msgCaseNumberTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Failed to check case number", err)
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

	c := &models.Case{
		CaseNumber:  in.CaseNumber,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		ClientID:    in.ClientID,
		StaffID:     in.StaffID,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgCaseNumberTaken)
		}
		return nil, internal("Failed to create case", err)
	}

	logger.Info("Case created", map[string]interface{}{
		"caseID":     c.ID,
		"caseNumber": c.CaseNumber,
	})
	return s.single(ctx, *c)
}

func (s *CaseService) Update(ctx context.Context, id string, in CaseUpdate) (*CaseView, error) {
	c, err := loadCase(ctx, s.cases, id, msgCaseNotFound)
	if err != nil {
		return nil, err
	}

	if in.CaseNumber != nil && *in.CaseNumber != "" && *in.CaseNumber != c.CaseNumber {
		other, err := s.cases.GetByCaseNumber(ctx, *in.CaseNumber)
		switch {
		case err == nil && other.ID != c.ID:
			return nil, apperrors.Conflict(msgCaseNumberTaken)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, internal("Failed to check case number", err)
		}
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
	if in.Status != nil && *in.Status != "" {
		if !in.Status.Valid() {
			return nil, apperrors.Validation(msgInvalidStatus)
		}
		c.Status = *in.Status
	}

	applyString(&c.CaseNumber, in.CaseNumber)
	applyString(&c.Title, in.Title)
	applyString(&c.Description, in.Description)
	applyString(&c.ClientID, in.ClientID)
	applyString(&c.StaffID, in.StaffID)

	if err := s.cases.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.Conflict(msgCaseNumberTaken)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound(msgCaseNotFound)
		}
		return nil, internal("Failed to update case", err)
	}

	logger.Info("Case updated", map[string]interface{}{"caseID": c.ID})
	return s.single(ctx, *c)
}

// Delete removes the case only. Appointments and documents that point at it
// are left in place.
func (s *CaseService) Delete(ctx context.Context, id string) error {
	err := s.cases.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(msgCaseNotFound)
	}
	if err != nil {
		return internal("Failed to delete case", err)
	}
	logger.Info("Case deleted", map[string]interface{}{"caseID": id})
	return nil
}
