package services

import (
	"context"
	"testing"
	"time"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/session"
	"github.com/legalcms/backend/internal/storage"
)

type fixture struct {
	svc    *Services
	repos  repository.Repositories
	store  *storage.FileStore
	admin  *models.User
	staff  *models.User
	staff2 *models.User
	client *models.User
	other  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.NewMemoryStore().Repositories()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	svc := New(repos, Options{
		Issuer:         session.NewIssuer("test-secret", time.Hour),
		Store:          store,
		Location:       time.UTC,
		MaxUploadBytes: 1 << 20,
	})
	f := &fixture{svc: svc, repos: repos, store: store}
	f.admin = f.user(t, "Ada Admin", "admin@firm.test", models.RoleAdmin)
	f.staff = f.user(t, "Sam Staff", "staff@firm.test", models.RoleStaff)
	f.staff2 = f.user(t, "Sky Staff", "staff2@firm.test", models.RoleStaff)
	f.client = f.user(t, "Cleo Client", "client@firm.test", models.RoleClient)
	f.other = f.user(t, "Otto Other", "other@firm.test", models.RoleClient)
	return f
}

func (f *fixture) user(t *testing.T, name, email string, role models.UserRole) *models.User {
	t.Helper()
	u, err := f.svc.Users.Create(context.Background(), UserInput{Name: name, Email: email, Password: "password123", Role: role})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func (f *fixture) newCase(t *testing.T, number string) *CaseView {
	t.Helper()
	c, err := f.svc.Cases.Create(context.Background(), CaseInput{
		CaseNumber:  number,
		Title:       "Matter " + number,
		Description: "description",
		ClientID:    f.client.ID,
		StaffID:     f.staff.ID,
	})
	if err != nil {
		t.Fatalf("create case %s: %v", number, err)
	}
	return c
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 6, hour, minute, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func expectKind(t *testing.T, err error, kind apperrors.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %q error, got nil", msg)
	}
	if !apperrors.Is(err, kind) {
		t.Fatalf("expected kind %d, got %v", kind, err)
	}
	if msg != "" && apperrors.PublicMessage(err, "") != msg {
		t.Fatalf("expected message %q, got %q", msg, apperrors.PublicMessage(err, ""))
	}
}
