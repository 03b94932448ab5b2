// Package repository persists the domain entities. Production uses GORM;
// tests may use the in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/legalcms/backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIDs returns the users that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type CaseRepository interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id string) (*models.Case, error)
	GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id string) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// ListActiveByStaff returns the staff member's non-cancelled appointments
	// starting before the given instant. Callers decide overlap.
	ListActiveByStaff(ctx context.Context, staffID string, before time.Time) ([]models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, error)
	Delete(ctx context.Context, id string) error
}

type ChatRepository interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	// Conversation returns messages exchanged between a and b in either
	// direction, oldest first.
	Conversation(ctx context.Context, a, b string) ([]models.ChatMessage, error)
	// MarkRead flags every unread message from sender to recipient as read
	// and returns how many changed.
	MarkRead(ctx context.Context, recipientID, senderID string) (int64, error)
}

// Repositories bundles one repository per entity.
type Repositories struct {
	Users        UserRepository
	Cases        CaseRepository
	Appointments AppointmentRepository
	Documents    DocumentRepository
	Chat         ChatRepository
}
