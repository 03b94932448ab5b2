package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/session"
)

const msgInvalidCredentials = "Invalid credentials"

// dummyHash is compared against when the e-mail is unknown so that a miss
// costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type LoginInput struct {
	Email    string           `json:"email"`
	Password string           `json:"password"`
	RoleType models.RoleClass `json:"roleType"`
}

// LoginResult is the admitted user plus the session token issued for it.
type LoginResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users    repository.UserRepository
	accounts *UserService
	issuer   *session.Issuer
	revoker  session.TokenRevoker
}

func NewAuthService(users repository.UserRepository, issuer *session.Issuer, revoker session.TokenRevoker) *AuthService {
	return &AuthService{
		users:    users,
		accounts: NewUserService(users),
		issuer:   issuer,
		revoker:  revoker,
	}
}

// Register creates a self-service account.
func (s *AuthService) Register(ctx context.Context, in UserInput) (*models.User, error) {
	return s.accounts.Create(ctx, in)
}

// Admit is the login predicate: the stored hash must match password and
// the user's role must belong to class. Credential failures are
// Unauthorized; a role outside the class is Forbidden. Both carry the same
// message.
func Admit(user *models.User, password string, class models.RoleClass) error {
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return apperrors.Unauthorized(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return apperrors.Unauthorized(msgInvalidCredentials)
	}
	if !class.Admits(user.Role) {
		return apperrors.Forbidden(msgInvalidCredentials)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := requireFields(in.Email, in.Password, string(in.RoleType)); err != nil {
		return nil, apperrors.Validation("Missing required fields: email, password, roleType")
	}
	if !in.RoleType.Valid() {
		return nil, apperrors.Validation("Invalid roleType. Must be practitioner or client")
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Login failed. Please try again.", err)
	}
	if err := Admit(user, in.Password, in.RoleType); err != nil {
		entry := logger.WithContext(map[string]interface{}{"component": "auth", "roleType": in.RoleType})
		if user != nil {
			entry = logger.WithUser(user.ID, "auth").WithField("roleType", in.RoleType)
		}
		entry.Warn("Login rejected")
		return nil, err
	}

	return s.issue(*user)
}

func (s *AuthService) issue(user models.User) (*LoginResult, error) {
	token, claims, err := s.issuer.Issue(user)
	if err != nil {
		return nil, internal("Failed to generate token", err)
	}
	logger.WithUser(user.ID, "auth").WithField("expiresAt", claims.ExpiresAt).Info("Session issued")
	return &LoginResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (session.Claims, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return session.Claims{}, apperrors.Unauthorized("Invalid token")
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return session.Claims{}, internal("Failed to check session", err)
	}
	if revoked {
		return session.Claims{}, apperrors.Unauthorized("Token has been revoked")
	}
	return claims, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims session.Claims) error {
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return internal("Failed to revoke session", err)
	}
	logger.WithUser(claims.UserID, "auth").Info("Session revoked")
	return nil
}

// Refresh issues a fresh token for the session user and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, claims session.Claims) (*LoginResult, error) {
	user, err := s.Me(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	result, err := s.issue(*user)
	if err != nil {
		return nil, err
	}
	if err := s.Logout(ctx, claims); err != nil {
		return nil, err
	}
	return result, nil
}

// Me returns the session user. A token whose user no longer exists is
// treated as unauthenticated.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized("User not authenticated")
	}
	if err != nil {
		return nil, internal("Failed to load user", err)
	}
	return user, nil
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := requireFields(in.CurrentPassword, in.NewPassword); err != nil {
		return err
	}
	if len(in.NewPassword) < 6 {
		return apperrors.Validation("New password must be at least 6 characters")
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return apperrors.Validation("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internal("Failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return internal("Failed to update password", err)
	}
	logger.WithUser(userID, "auth").Info("Password changed")
	return nil
}
