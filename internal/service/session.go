package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"resumehub/api/internal/config"
	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
	"resumehub/api/internal/security"
)

// CredentialStore is the persistence contract the session manager consumes.
// Upsert must replace any existing row for the same account.
type CredentialStore interface {
	Upsert(ctx context.Context, cred models.Credential) error
	GetByUser(ctx context.Context, userID string) (models.Credential, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionManager issues, verifies, rotates, and revokes paired access and
// refresh tokens. The refresh token is persisted only as an argon2 hash;
// issuing overwrites the account's single credential row, which is what
// revokes the previous session.
type SessionManager struct {
	creds      CredentialStore
	cfg        config.SecurityConfig
	hashParams security.Argon2Params
	log        zerolog.Logger
}

func NewSessionManager(creds CredentialStore, cfg config.SecurityConfig, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		creds: creds,
		cfg:   cfg,
		hashParams: security.Argon2Params{
			Time:    cfg.HashTime,
			Memory:  cfg.HashMemory,
			Threads: cfg.HashThreads,
		},
		log: log,
	}
}

func (m *SessionManager) IssueSession(ctx context.Context, userID string) (TokenPair, error) {
	accessToken, err := security.GenerateToken(m.cfg.JWTAccessSecret, userID, m.cfg.JWTAccessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := security.GenerateToken(m.cfg.JWTRefreshSecret, userID, m.cfg.JWTRefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	tokenHash, err := security.HashSecretWithParams(refreshToken, m.hashParams)
	if err != nil {
		return TokenPair{}, err
	}

	cred := models.Credential{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(m.cfg.JWTRefreshTTL),
	}
	if err := m.creds.Upsert(ctx, cred); err != nil {
		return TokenPair{}, persistenceErr("upsert credential", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess checks signature and expiry only; access tokens carry no
// server-side state.
func (m *SessionManager) VerifyAccess(token string) (*security.Claims, error) {
	return security.ParseToken(token, m.cfg.JWTAccessSecret)
}

// VerifyRefresh checks the token cryptographically and then against the
// stored hash. A token that still verifies under the refresh key but has
// been superseded by a rotation fails the hash comparison and is rejected.
func (m *SessionManager) VerifyRefresh(ctx context.Context, token string) (*security.Claims, error) {
	claims, err := security.ParseToken(token, m.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, err
	}

	cred, err := m.creds.GetByUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, persistenceErr("load credential", err)
	}

	ok, err := security.VerifySecret(token, cred.TokenHash)
	if err != nil || !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RotateSession is a full reissue: the new refresh hash replaces the old
// one, so the presented token becomes unusable the moment this returns.
// Callers must have passed VerifyRefresh first.
func (m *SessionManager) RotateSession(ctx context.Context, userID string) (TokenPair, error) {
	pair, err := m.IssueSession(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	m.log.Debug().Str("user_id", userID).Msg("session rotated")
	return pair, nil
}

func (m *SessionManager) Revoke(ctx context.Context, userID string) error {
	if err := m.creds.DeleteByUser(ctx, userID); err != nil {
		return persistenceErr("delete credential", err)
	}
	m.log.Debug().Str("user_id", userID).Msg("session revoked")
	return nil
}
