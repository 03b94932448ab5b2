package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legalcms/backend/internal/models"
)

// MemoryStore keeps every entity in-process. It honours the same
// uniqueness rules and orderings as the GORM repositories and is meant for
// tests and local tooling.
type MemoryStore struct {
	mu           sync.RWMutex
	last         time.Time
	users        map[string]models.User
	emails       map[string]string // email -> user ID
	cases        map[string]models.Case
	caseNumbers  map[string]string // case number -> case ID
	appointments map[string]models.Appointment
	documents    map[string]models.Document
	messages     []models.ChatMessage
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]models.User),
		emails:       make(map[string]string),
		cases:        make(map[string]models.Case),
		caseNumbers:  make(map[string]string),
		appointments: make(map[string]models.Appointment),
		documents:    make(map[string]models.Document),
	}
}

// Repositories exposes the store through the repository interfaces.
func (m *MemoryStore) Repositories() Repositories {
	return Repositories{
		Users:        memoryUsers{m},
		Cases:        memoryCases{m},
		Appointments: memoryAppointments{m},
		Documents:    memoryDocuments{m},
		Chat:         memoryChat{m},
	}
}

// now returns a strictly increasing UTC clock so orderings are stable.
// Callers must hold mu.
func (m *MemoryStore) now() time.Time {
	t := time.Now().UTC()
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

func (m *MemoryStore) stamp(createdAt, updatedAt *time.Time) {
	now := m.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = now
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, taken := r.m.emails[user.Email]; taken {
		return ErrDuplicate
	}
	user.ID = newID(user.ID)
	if _, exists := r.m.users[user.ID]; exists {
		return ErrDuplicate
	}
	r.m.stamp(&user.CreatedAt, &user.UpdatedAt)
	r.m.users[user.ID] = *user
	r.m.emails[user.Email] = user.ID
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	id, ok := r.m.emails[email]
	r.m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r memoryUsers) GetByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r memoryUsers) List(_ context.Context, filter UserFilter) ([]models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	res := make([]models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (r memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = r.m.now()
	r.m.users[id] = u
	return nil
}

type memoryCases struct{ m *MemoryStore }

func (r memoryCases) Create(_ context.Context, c *models.Case) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, taken := r.m.caseNumbers[c.CaseNumber]; taken {
		return ErrDuplicate
	}
	c.ID = newID(c.ID)
	if c.Status == "" {
		c.Status = models.CaseStatusOpen
	}
	r.m.stamp(&c.CreatedAt, &c.UpdatedAt)
	r.m.cases[c.ID] = *c
	r.m.caseNumbers[c.CaseNumber] = c.ID
	return nil
}

func (r memoryCases) GetByID(_ context.Context, id string) (*models.Case, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	c, ok := r.m.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r memoryCases) GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error) {
	r.m.mu.RLock()
	id, ok := r.m.caseNumbers[caseNumber]
	r.m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r memoryCases) GetByIDs(_ context.Context, ids []string) (map[string]models.Case, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make(map[string]models.Case, len(ids))
	for _, id := range ids {
		if c, ok := r.m.cases[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (r memoryCases) List(_ context.Context, filter CaseFilter) ([]models.Case, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	res := make([]models.Case, 0, len(r.m.cases))
	for _, c := range r.m.cases {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ClientID != "" && c.ClientID != filter.ClientID {
			continue
		}
		if filter.StaffID != "" && c.StaffID != filter.StaffID {
			continue
		}
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].UpdatedAt.Equal(res[j].UpdatedAt) {
			return res[i].UpdatedAt.After(res[j].UpdatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (r memoryCases) Update(_ context.Context, c *models.Case) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	current, ok := r.m.cases[c.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.m.caseNumbers[c.CaseNumber]; taken && owner != c.ID {
		return ErrDuplicate
	}
	delete(r.m.caseNumbers, current.CaseNumber)
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = r.m.now()
	r.m.cases[c.ID] = *c
	r.m.caseNumbers[c.CaseNumber] = c.ID
	return nil
}

func (r memoryCases) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cases[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.m.cases, id)
	delete(r.m.caseNumbers, c.CaseNumber)
	return nil
}

type memoryAppointments struct{ m *MemoryStore }

func copyAppointment(a models.Appointment) models.Appointment {
	if a.CaseID != nil {
		id := *a.CaseID
		a.CaseID = &id
	}
	return a
}

func (r memoryAppointments) Create(_ context.Context, a *models.Appointment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a.ID = newID(a.ID)
	if a.Status == "" {
		a.Status = models.AppointmentStatusScheduled
	}
	r.m.stamp(&a.CreatedAt, &a.UpdatedAt)
	r.m.appointments[a.ID] = copyAppointment(*a)
	return nil
}

func (r memoryAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	a, ok := r.m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = copyAppointment(a)
	return &a, nil
}

func sortByDate(res []models.Appointment) {
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].ID < res[j].ID
	})
}

func (r memoryAppointments) List(_ context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	res := make([]models.Appointment, 0, len(r.m.appointments))
	for _, a := range r.m.appointments {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.ClientID != "" && a.ClientID != filter.ClientID {
			continue
		}
		if filter.StaffID != "" && a.StaffID != filter.StaffID {
			continue
		}
		if filter.CaseID != "" && (a.CaseID == nil || *a.CaseID != filter.CaseID) {
			continue
		}
		if filter.Day != nil && !filter.Day.Contains(a.Date) {
			continue
		}
		res = append(res, copyAppointment(a))
	}
	sortByDate(res)
	return res, nil
}

func (r memoryAppointments) ListActiveByStaff(_ context.Context, staffID string, before time.Time) ([]models.Appointment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var res []models.Appointment
	for _, a := range r.m.appointments {
		if a.StaffID != staffID || a.Status == models.AppointmentStatusCancelled || !a.Date.Before(before) {
			continue
		}
		res = append(res, copyAppointment(a))
	}
	sortByDate(res)
	return res, nil
}

func (r memoryAppointments) Update(_ context.Context, a *models.Appointment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	current, ok := r.m.appointments[a.ID]
	if !ok {
		return ErrNotFound
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = r.m.now()
	r.m.appointments[a.ID] = copyAppointment(*a)
	return nil
}

func (r memoryAppointments) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.appointments, id)
	return nil
}

type memoryDocuments struct{ m *MemoryStore }

func (r memoryDocuments) Create(_ context.Context, d *models.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d.ID = newID(d.ID)
	r.m.stamp(&d.CreatedAt, &d.UpdatedAt)
	if d.UploadedAt.IsZero() {
		d.UploadedAt = d.CreatedAt
	}
	r.m.documents[d.ID] = *d
	return nil
}

func (r memoryDocuments) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	d, ok := r.m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r memoryDocuments) List(_ context.Context, filter DocumentFilter) ([]models.Document, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	res := make([]models.Document, 0, len(r.m.documents))
	for _, d := range r.m.documents {
		if filter.CaseID != "" && d.CaseID != filter.CaseID {
			continue
		}
		if filter.UploadedBy != "" && d.UploadedBy != filter.UploadedBy {
			continue
		}
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].UploadedAt.Equal(res[j].UploadedAt) {
			return res[i].UploadedAt.After(res[j].UploadedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (r memoryDocuments) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.documents[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.documents, id)
	return nil
}

type memoryChat struct{ m *MemoryStore }

func (r memoryChat) Create(_ context.Context, msg *models.ChatMessage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	msg.ID = newID(msg.ID)
	r.m.stamp(&msg.CreatedAt, &msg.UpdatedAt)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = msg.CreatedAt
	}
	r.m.messages = append(r.m.messages, *msg)
	return nil
}

func (r memoryChat) Conversation(_ context.Context, a, b string) ([]models.ChatMessage, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var res []models.ChatMessage
	for _, msg := range r.m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			res = append(res, msg)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.Before(res[j].Timestamp)
	})
	return res, nil
}

func (r memoryChat) MarkRead(_ context.Context, recipientID, senderID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for i := range r.m.messages {
		msg := &r.m.messages[i]
		if msg.RecipientID == recipientID && msg.SenderID == senderID && !msg.Read {
			msg.Read = true
			msg.UpdatedAt = r.m.now()
			n++
		}
	}
	return n, nil
}
