package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/services"
	"github.com/legalcms/backend/internal/session"
)

const sample = `{
  "users": [
    {"name": "Admin", "email": "Admin@Firm.test", "password": "admin123", "role": "admin"},
    {"name": "Lawyer", "email": "lawyer@firm.test", "password": "lawyer123", "role": "lawyer"},
    {"name": "Client", "email": "client@firm.test", "password": "client123", "role": "client"},
    {"name": "Ghost", "email": "ghost@firm.test", "password": "ghost123", "role": "partner"}
  ],
  "cases": [
    {"caseNumber": "CASE-1", "title": "Lease", "description": "Lease dispute",
     "clientEmail": "client@firm.test", "staffEmail": "lawyer@firm.test"}
  ]
}`

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.UserRole
		ok   bool
	}{
		{"admin", models.RoleAdmin, true},
		{"Lawyer", models.RoleStaff, true},
		{"STAFF", models.RoleStaff, true},
		{"client", models.RoleClient, true},
		{"viewer", "", false},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseRole(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	repos := repository.NewMemoryStore().Repositories()
	svc := services.New(repos, services.Options{Issuer: session.NewIssuer("seed", time.Hour)})
	ctx := context.Background()

	first, err := Run(ctx, repos, svc, data)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.UsersCreated != 3 || first.UsersSkipped != 1 || first.CasesCreated != 1 {
		t.Fatalf("first run = %+v", first)
	}

	second, err := Run(ctx, repos, svc, data)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.UsersCreated != 0 || second.CasesCreated != 0 || second.CasesSkipped != 1 {
		t.Fatalf("second run = %+v", second)
	}

	admin, err := repos.Users.GetByEmail(ctx, "admin@firm.test")
	if err != nil {
		t.Fatalf("admin not stored under normalized email: %v", err)
	}
	if admin.Password == "admin123" {
		t.Errorf("seeded password stored in clear text")
	}
	if _, err := svc.Auth.Login(ctx, services.LoginInput{Email: "admin@firm.test", Password: "admin123", RoleType: models.RoleClassPractitioner}); err != nil {
		t.Errorf("seeded admin cannot log in: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing seed file")
	}
}
