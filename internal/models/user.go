package models

import "time"

type UserRole string

const (
	UserRoleApplicant UserRole = "APPLICANT"
	UserRoleRecruiter UserRole = "RECRUITER"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential is the single refresh-token record an account may hold. It is
// keyed by user id, so issuing a new session always overwrites the previous
// one; the raw refresh token is never stored, only its hash.
type Credential struct {
	UserID    string
	TokenHash []byte
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
