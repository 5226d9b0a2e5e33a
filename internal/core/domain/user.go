package domain

import "time"

// UserRole enumerates coarse authorization roles carried in access tokens.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	Role               UserRole
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastPasswordChange time.Time
	DeletedAt          *time.Time
}
