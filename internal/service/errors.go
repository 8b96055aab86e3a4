package service

import (
	"errors"
	"fmt"

	"resumehub/api/internal/security"
)

// Session manager errors. The token sentinels are the ones minted by the
// security package so callers can errors.Is against either import.
var (
	ErrInvalidToken = security.ErrInvalidToken
	ErrTokenExpired = security.ErrTokenExpired

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Workflow and resume errors.
var (
	ErrInvalidStatus        = errors.New("invalid resume status")
	ErrMissingReason        = errors.New("missing status change reason")
	ErrInvalidSort          = errors.New("invalid sort order")
	ErrIntroductionTooShort = errors.New("introduction too short")
	ErrNoAttachment         = errors.New("resume has no attachment")
	ErrUnsupportedFileType  = errors.New("unsupported attachment type")
)

// ErrPersistenceUnavailable wraps collaborator failures that are not part of
// the domain taxonomy. It is the only error kind callers may treat as
// transient; the services themselves never retry.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistenceUnavailable, op, err)
}
