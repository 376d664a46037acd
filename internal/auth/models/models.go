package models

import (
	"strings"
	"time"

	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// UserStatus tracks whether an account may log in.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserDisabled UserStatus = "DISABLED"
)

// User is an account belonging to a company. Super-admin users carry a nil
// CompanyID and operate across tenants.
type User struct {
	ID           id.UserID
	CompanyID    id.CompanyID
	Email        string
	Name         string
	Role         authz.Role
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
}

// CanLogin reports whether the account is allowed to authenticate.
func (u *User) CanLogin() bool {
	return u.Status == UserActive
}

// Session is the server-side artifact behind the session cookie. Token is the
// opaque lookup key; Role, CompanyID, and CompanyName are denormalized at
// login so request resolution needs a single read.
type Session struct {
	Token       string
	UserID      id.UserID
	CompanyID   id.CompanyID
	CompanyName string
	Email       string
	Role        authz.Role
	Device      string
	IP          string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	fields := map[string]string{}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if r.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// UserResponse is the JSON shape of an authenticated user.
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyID   string `json:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// SessionResponse describes an active session for the sessions list.
type SessionResponse struct {
	Token     string    `json:"token"`
	Device    string    `json:"device"`
	IP        string    `json:"ip"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
