package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
)

// UserInput is the payload for creating an account.
type UserInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperrors.Validation(msgInvalidRole)
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, internal("Failed to fetch user", err)
	}
	return u, nil
}

// Create validates and stores a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if err := requireFields(in.Name, in.Email, in.Password, string(in.Role)); err != nil {
		return nil, apperrors.Validation("Missing required fields: name, email, password, role")
	}
	if !in.Role.Valid() {
		return nil, apperrors.Validation(msgInvalidRole)
	}
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict(msgEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Failed to check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("Failed to hash password", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    email,
		Password: string(hash),
		Role:     in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgEmailTaken)
		}
		return nil, internal("Failed to create user", err)
	}

	logger.WithUser(user.ID, "users").WithField("role", user.Role).Info("User created")
	return user, nil
}
