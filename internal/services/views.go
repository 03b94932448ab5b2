package services

import (
	"context"

	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
)

// Read-side projections. Stored rows keep plain ids; views add small
// summaries of the rows those ids point at. A dangling id simply has no
// summary.

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CaseSummary struct {
	ID         string `json:"id"`
	CaseNumber string `json:"caseNumber"`
	Title      string `json:"title"`
}

type CaseView struct {
	models.Case
	Client *UserSummary `json:"client,omitempty"`
	Staff  *UserSummary `json:"staff,omitempty"`
}

type AppointmentView struct {
	models.Appointment
	Client *UserSummary `json:"client,omitempty"`
	Staff  *UserSummary `json:"staff,omitempty"`
	Case   *CaseSummary `json:"case,omitempty"`
}

type DocumentView struct {
	models.Document
	Case     *CaseSummary `json:"case,omitempty"`
	Uploader *UserSummary `json:"uploader,omitempty"`
}

func summarizeUser(users map[string]models.User, id string) *UserSummary {
	u, ok := users[id]
	if !ok {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func summarizeCase(cases map[string]models.Case, id string) *CaseSummary {
	c, ok := cases[id]
	if !ok {
		return nil
	}
	return &CaseSummary{ID: c.ID, CaseNumber: c.CaseNumber, Title: c.Title}
}

func NewCaseView(c models.Case, users map[string]models.User) CaseView {
	return CaseView{
		Case:   c,
		Client: summarizeUser(users, c.ClientID),
		Staff:  summarizeUser(users, c.StaffID),
	}
}

func NewAppointmentView(a models.Appointment, users map[string]models.User, cases map[string]models.Case) AppointmentView {
	v := AppointmentView{
		Appointment: a,
		Client:      summarizeUser(users, a.ClientID),
		Staff:       summarizeUser(users, a.StaffID),
	}
	if a.CaseID != nil {
		v.Case = summarizeCase(cases, *a.CaseID)
	}
	return v
}

func NewDocumentView(d models.Document, users map[string]models.User, cases map[string]models.Case) DocumentView {
	return DocumentView{
		Document: d,
		Case:     summarizeCase(cases, d.CaseID),
		Uploader: summarizeUser(users, d.UploadedBy),
	}
}

// projector batches the lookups a list of views needs.
type projector struct {
	users repository.UserRepository
	cases repository.CaseRepository
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (p projector) caseViews(ctx context.Context, cases []models.Case) ([]CaseView, error) {
	ids := make([]string, 0, 2*len(cases))
	for _, c := range cases {
		ids = append(ids, c.ClientID, c.StaffID)
	}
	users, err := p.users.GetByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, internal("Failed to load case participants", err)
	}
	out := make([]CaseView, 0, len(cases))
	for _, c := range cases {
		out = append(out, NewCaseView(c, users))
	}
	return out, nil
}

func (p projector) appointmentViews(ctx context.Context, appointments []models.Appointment) ([]AppointmentView, error) {
	userIDs := make([]string, 0, 2*len(appointments))
	var caseIDs []string
	for _, a := range appointments {
		userIDs = append(userIDs, a.ClientID, a.StaffID)
		if a.CaseID != nil {
			caseIDs = append(caseIDs, *a.CaseID)
		}
	}
	users, err := p.users.GetByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, internal("Failed to load appointment participants", err)
	}
	cases, err := p.cases.GetByIDs(ctx, uniqueIDs(caseIDs))
	if err != nil {
		return nil, internal("Failed to load appointment cases", err)
	}
	out := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, NewAppointmentView(a, users, cases))
	}
	return out, nil
}

func (p projector) documentViews(ctx context.Context, documents []models.Document) ([]DocumentView, error) {
	userIDs := make([]string, 0, len(documents))
	caseIDs := make([]string, 0, len(documents))
	for _, d := range documents {
		userIDs = append(userIDs, d.UploadedBy)
		caseIDs = append(caseIDs, d.CaseID)
	}
	users, err := p.users.GetByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, internal("Failed to load document uploaders", err)
	}
	cases, err := p.cases.GetByIDs(ctx, uniqueIDs(caseIDs))
	if err != nil {
		return nil, internal("Failed to load document cases", err)
	}
	out := make([]DocumentView, 0, len(documents))
	for _, d := range documents {
		out = append(out, NewDocumentView(d, users, cases))
	}
	return out, nil
}
