// Package session issues and verifies the bearer tokens handed out at login.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/legalcms/backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of a token.
type Claims struct {
	UserID    string
	Role      models.UserRole
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Issuer signs HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed token for user together with its claims.
func (i *Issuer) Issue(user models.User) (string, Claims, error) {
	now := i.now()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(i.ttl).UTC().Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": claims.UserID,
		"role":    string(claims.Role),
		"email":   claims.Email,
		"jti":     claims.TokenID,
		"iat":     now.Unix(),
		"exp":     claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature and expiry of tokenString.
func (i *Issuer) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, _ := mapClaims["user_id"].(string)
	role, _ := mapClaims["role"].(string)
	email, _ := mapClaims["email"].(string)
	jti, _ := mapClaims["jti"].(string)
	if userID == "" || jti == "" {
		return Claims{}, ErrInvalidToken
	}
	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		UserID:    userID,
		Role:      models.UserRole(role),
		Email:     email,
		TokenID:   jti,
		ExpiresAt: exp.Time.UTC(),
	}, nil
}
