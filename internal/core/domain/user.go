package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User is the current user snapshot returned by the backend.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Roles     []string  `json:"roles,omitempty" yaml:"roles,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate performs client-side checks before a login request is sent.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrValidation.WithDetails("email is required")
	}
	if c.Password == "" {
		return ErrValidation.WithDetails("password is required")
	}
	return nil
}

// RegisterRequest holds the registration form fields.
// ConfirmPassword is checked locally and never sent.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// MinPasswordLength is the shortest password the registration form accepts.
const MinPasswordLength = 8

// Validate performs the registration form checks.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation.WithDetails("name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrValidation.WithDetails("a valid email address is required")
	}
	if len(r.Password) < MinPasswordLength {
		return ErrValidation.WithDetails("password must be at least 8 characters")
	}
	if r.Password != r.ConfirmPassword {
		return ErrValidation.WithDetails("passwords do not match")
	}
	return nil
}
