package client

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DataStore caches what the current user may see. It is never the source
// of truth: every mutation goes to the API first and the affected
// collection is refetched afterwards. Readers always get copies.
type DataStore struct {
	api *Client

	mu           sync.RWMutex
	currentUser  *User
	users        []User
	cases        []Case
	appointments []Appointment
	documents    []Document
}

func NewDataStore(api *Client) *DataStore {
	return &DataStore{api: api}
}

func (s *DataStore) isPractitioner() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser != nil && (s.currentUser.Role == "ADMIN" || s.currentUser.Role == "STAFF")
}

// Login authenticates and fills the cache.
func (s *DataStore) Login(ctx context.Context, email, password, roleType string) (*User, error) {
	session, err := s.api.Login(ctx, email, password, roleType)
	if err != nil {
		return nil, err
	}
	user := session.User
	s.mu.Lock()
	s.currentUser = &user
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.CurrentUser(), nil
}

// Logout revokes the session and empties the cache, even if the server
// call fails.
func (s *DataStore) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.mu.Lock()
	s.currentUser = nil
	s.users = nil
	s.cases = nil
	s.appointments = nil
	s.documents = nil
	s.mu.Unlock()
	return err
}

// Register creates a client account. It does not log in.
func (s *DataStore) Register(ctx context.Context, name, email, password string) (*User, error) {
	return s.api.Register(ctx, UserInput{Name: name, Email: email, Password: password, Role: "CLIENT"})
}

func (s *DataStore) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

// Refresh refetches every collection the current user can list.
func (s *DataStore) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if s.isPractitioner() {
		g.Go(func() error { return s.refreshUsers(gctx) })
	}
	g.Go(func() error { return s.refreshCases(gctx) })
	g.Go(func() error { return s.refreshAppointments(gctx) })
	g.Go(func() error { return s.refreshDocuments(gctx) })
	return g.Wait()
}

func (s *DataStore) refreshUsers(ctx context.Context) error {
	users, err := s.api.Users(ctx, "")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

func (s *DataStore) refreshCases(ctx context.Context) error {
	cases, err := s.api.Cases(ctx, CaseFilter{})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cases = cases
	s.mu.Unlock()
	return nil
}

func (s *DataStore) refreshAppointments(ctx context.Context) error {
	appointments, err := s.api.Appointments(ctx, AppointmentFilter{})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.appointments = appointments
	s.mu.Unlock()
	return nil
}

func (s *DataStore) refreshDocuments(ctx context.Context) error {
	documents, err := s.api.Documents(ctx, DocumentFilter{})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.documents = documents
	s.mu.Unlock()
	return nil
}

func (s *DataStore) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]User(nil), s.users...)
}

// Cases returns deep copies of the cached cases.
func (s *DataStore) Cases() []Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Case, len(s.cases))
	for i, c := range s.cases {
		out[i] = copyCase(c)
	}
	return out
}

func (s *DataStore) Appointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, len(s.appointments))
	for i, a := range s.appointments {
		out[i] = copyAppointment(a)
	}
	return out
}

func (s *DataStore) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.documents))
	for i, d := range s.documents {
		out[i] = copyDocument(d)
	}
	return out
}

// FindUserByID looks in the cached user list.
func (s *DataStore) FindUserByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// DocumentsForCase filters the cached documents.
func (s *DataStore) DocumentsForCase(caseID string) []Document {
	var out []Document
	for _, d := range s.Documents() {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out
}

func (s *DataStore) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	u, err := s.api.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return u, s.refreshUsers(ctx)
}

func (s *DataStore) CreateCase(ctx context.Context, in CaseInput) (*Case, error) {
	c, err := s.api.CreateCase(ctx, in)
	if err != nil {
		return nil, err
	}
	return c, s.refreshCases(ctx)
}

func (s *DataStore) UpdateCase(ctx context.Context, id string, in CaseUpdate) (*Case, error) {
	c, err := s.api.UpdateCase(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return c, s.refreshCases(ctx)
}

func (s *DataStore) DeleteCase(ctx context.Context, id string) error {
	if err := s.api.DeleteCase(ctx, id); err != nil {
		return err
	}
	return s.refreshCases(ctx)
}

func (s *DataStore) CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	a, err := s.api.CreateAppointment(ctx, in)
	if err != nil {
		return nil, err
	}
	return a, s.refreshAppointments(ctx)
}

func (s *DataStore) UpdateAppointment(ctx context.Context, id string, in AppointmentUpdate) (*Appointment, error) {
	a, err := s.api.UpdateAppointment(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return a, s.refreshAppointments(ctx)
}

func (s *DataStore) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.api.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	return s.refreshAppointments(ctx)
}

func (s *DataStore) UploadDocument(ctx context.Context, caseID, name, filename string, file io.Reader) (*Document, error) {
	d, err := s.api.UploadDocument(ctx, caseID, name, filename, file)
	if err != nil {
		return nil, err
	}
	return d, s.refreshDocuments(ctx)
}

func (s *DataStore) DeleteDocument(ctx context.Context, id string) error {
	if err := s.api.DeleteDocument(ctx, id); err != nil {
		return err
	}
	return s.refreshDocuments(ctx)
}

func copyUserSummary(u *UserSummary) *UserSummary {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func copyCaseSummary(cs *CaseSummary) *CaseSummary {
	if cs == nil {
		return nil
	}
	c := *cs
	return &c
}

func copyCase(c Case) Case {
	c.Client = copyUserSummary(c.Client)
	c.Staff = copyUserSummary(c.Staff)
	return c
}

func copyAppointment(a Appointment) Appointment {
	if a.CaseID != nil {
		id := *a.CaseID
		a.CaseID = &id
	}
	a.Client = copyUserSummary(a.Client)
	a.Staff = copyUserSummary(a.Staff)
	a.Case = copyCaseSummary(a.Case)
	return a
}

func copyDocument(d Document) Document {
	d.Case = copyCaseSummary(d.Case)
	d.Uploader = copyUserSummary(d.Uploader)
	return d
}
