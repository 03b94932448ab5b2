// Package services holds the business rules: validation, referential
// checks, scheduling conflicts, authorization scoping and response views.
package services

import (
	"time"

	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/session"
	"github.com/legalcms/backend/internal/storage"
)

type Options struct {
	Issuer         *session.Issuer
	Revoker        session.TokenRevoker
	Store          storage.ObjectStore
	Location       *time.Location
	MaxUploadBytes int64
}

// Services is one instance of every service over a shared set of
// repositories.
type Services struct {
	Auth         *AuthService
	Users        *UserService
	Cases        *CaseService
	Appointments *AppointmentService
	Documents    *DocumentService
	Chat         *ChatService
}

func New(repos repository.Repositories, opts Options) *Services {
	revoker := opts.Revoker
	if revoker == nil {
		revoker = session.NewMemoryRevoker()
	}
	return &Services{
		Auth:         NewAuthService(repos.Users, opts.Issuer, revoker),
		Users:        NewUserService(repos.Users),
		Cases:        NewCaseService(repos.Cases, repos.Users),
		Appointments: NewAppointmentService(repos.Appointments, repos.Users, repos.Cases, opts.Location),
		Documents:    NewDocumentService(repos.Documents, repos.Cases, repos.Users, opts.Store, opts.MaxUploadBytes),
		Chat:         NewChatService(repos.Chat, repos.Users),
	}
}
