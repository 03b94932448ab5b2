package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleStaff  UserRole = "STAFF"
	RoleClient UserRole = "CLIENT"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

// IsPractitioner is true for legal staff (admins and lawyers).
func (r UserRole) IsPractitioner() bool {
	return r == RoleAdmin || r == RoleStaff
}

// RoleClass is the portal a user asks to log in to.
type RoleClass string

const (
	RoleClassPractitioner RoleClass = "practitioner"
	RoleClassClient       RoleClass = "client"
)

func (c RoleClass) Valid() bool {
	return c == RoleClassPractitioner || c == RoleClassClient
}

// Admits reports whether a user with role may enter the portal c.
func (c RoleClass) Admits(role UserRole) bool {
	switch c {
	case RoleClassPractitioner:
		return role.IsPractitioner()
	case RoleClassClient:
		return role == RoleClient
	}
	return false
}

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
