package domain

import "time"

// Portal roles form a closed enum; no other value is ever issued in a token.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleStudent = "student"
)

// Account statuses. Only active accounts may be issued tokens.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// ValidRole reports whether role belongs to the portal role enum.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

// User models a portal account. The password hash never leaves the server.
type User struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	RegistrationNo string    `json:"registration_no,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
