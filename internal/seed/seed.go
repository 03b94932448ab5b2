// Package seed loads demo accounts and cases from a JSON file. Running it
// twice changes nothing.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/services"
)

// DefaultPaths are tried in order when no file is given.
var DefaultPaths = []string{"data/initial-users.json", "../../data/initial-users.json"}

type UserData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CaseData struct {
	CaseNumber  string `json:"caseNumber"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ClientEmail string `json:"clientEmail"`
	StaffEmail  string `json:"staffEmail"`
}

// JSONData is the layout of the seed file.
type JSONData struct {
	Users []UserData `json:"users"`
	Cases []CaseData `json:"cases"`
}

// Result counts what a run created and skipped.
type Result struct {
	UsersCreated int
	UsersSkipped int
	CasesCreated int
	CasesSkipped int
}

// ParseRole maps seed-file role names to roles. "lawyer" is an alias for
// STAFF.
func ParseRole(name string) (models.UserRole, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return models.RoleAdmin, nil
	case "lawyer", "staff":
		return models.RoleStaff, nil
	case "client":
		return models.RoleClient, nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

// Load reads the seed file at path, or the first of DefaultPaths that
// exists when path is empty.
func Load(path string) (*JSONData, error) {
	candidates := DefaultPaths
	if path != "" {
		candidates = []string{path}
	}

	var lastErr error
	for _, p := range candidates {
		raw, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		var data JSONData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		logger.Debug("Seed file loaded", map[string]interface{}{"path": p})
		return &data, nil
	}
	return nil, fmt.Errorf("failed to read seed file: %w", lastErr)
}

// Run creates the users and cases in data that do not exist yet.
func Run(ctx context.Context, repos repository.Repositories, svc *services.Services, data *JSONData) (Result, error) {
	var res Result

	for _, u := range data.Users {
		role, err := ParseRole(u.Role)
		if err != nil {
			logger.Warn("Skipping seed user", map[string]interface{}{"email": u.Email, "error": err.Error()})
			res.UsersSkipped++
			continue
		}
		if _, err := repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(u.Email))); err == nil {
			res.UsersSkipped++
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, fmt.Errorf("look up %s: %w", u.Email, err)
		}

		created, err := svc.Users.Create(ctx, services.UserInput{
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
			Role:     role,
		})
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		logger.Info("Seeded user", map[string]interface{}{"email": created.Email, "role": created.Role})
		res.UsersCreated++
	}

	for _, c := range data.Cases {
		if _, err := repos.Cases.GetByCaseNumber(ctx, c.CaseNumber); err == nil {
			res.CasesSkipped++
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, fmt.Errorf("look up case %s: %w", c.CaseNumber, err)
		}

		client, err := repos.Users.GetByEmail(ctx, strings.ToLower(c.ClientEmail))
		if err != nil {
			return res, fmt.Errorf("case %s client %s: %w", c.CaseNumber, c.ClientEmail, err)
		}
		staff, err := repos.Users.GetByEmail(ctx, strings.ToLower(c.StaffEmail))
		if err != nil {
			return res, fmt.Errorf("case %s staff %s: %w", c.CaseNumber, c.StaffEmail, err)
		}

		if _, err := svc.Cases.Create(ctx, services.CaseInput{
			CaseNumber:  c.CaseNumber,
			Title:       c.Title,
			Description: c.Description,
			Status:      models.CaseStatus(c.Status),
			ClientID:    client.ID,
			StaffID:     staff.ID,
		}); err != nil {
			return res, fmt.Errorf("create case %s: %w", c.CaseNumber, err)
		}
		logger.Info("Seeded case", map[string]interface{}{"caseNumber": c.CaseNumber})
		res.CasesCreated++
	}

	return res, nil
}
