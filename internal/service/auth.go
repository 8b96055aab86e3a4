package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"resumehub/api/internal/config"
	"resumehub/api/internal/ids"
	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
	"resumehub/api/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type AuthService struct {
	users      UserStore
	sessions   *SessionManager
	hashParams security.Argon2Params
	log        zerolog.Logger
}

func NewAuthService(users UserStore, sessions *SessionManager, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hashParams: security.Argon2Params{
			Time:    cfg.HashTime,
			Memory:  cfg.HashMemory,
			Threads: cfg.HashThreads,
		},
		log: log,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, persistenceErr("find user", err)
	}

	passwordHash, err := security.HashSecretWithParams(input.Password, s.hashParams)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  input.DisplayName,
		Role:         models.UserRoleApplicant,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, persistenceErr("create user", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

type AuthResult struct {
	TokenPair
	User models.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, persistenceErr("find user", err)
	}

	ok, err := security.VerifySecret(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	pair, err := s.sessions.IssueSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{TokenPair: pair, User: user}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, err
		}
		return models.User{}, persistenceErr("get user", err)
	}
	return user, nil
}
