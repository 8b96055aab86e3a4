package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
)

type memUserStore struct {
	users map[string]models.User // keyed by id
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) Create(_ context.Context, user models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func newTestAuthService(users UserStore) (*AuthService, *SessionManager) {
	cfg := testSecurityConfig()
	sessions := NewSessionManager(newMemCredentialStore(), cfg, zerolog.Nop())
	return NewAuthService(users, sessions, cfg, zerolog.Nop()), sessions
}

func TestRegister_NormalizesAndHashes(t *testing.T) {
	users := newMemUserStore()
	svc, _ := newTestAuthService(users)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:       "  Applicant@Example.COM ",
		Password:    "hunter22!",
		DisplayName: "Jo Applicant",
	})
	require.NoError(t, err)

	assert.Equal(t, "applicant@example.com", user.Email)
	assert.Equal(t, models.UserRoleApplicant, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotContains(t, string(user.PasswordHash), "hunter22!")
}

func TestRegister_EmailTaken(t *testing.T) {
	users := newMemUserStore()
	svc, _ := newTestAuthService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter22!", DisplayName: "Jo"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "JO@example.com", Password: "other-pass", DisplayName: "Jo Again"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	users := newMemUserStore()
	svc, sessions := newTestAuthService(users)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter22!", DisplayName: "Jo"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, "jo@example.com", "hunter22!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, result.User.ID)

	claims, err := sessions.VerifyRefresh(ctx, result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
}

func TestLogin_BadCredentials(t *testing.T) {
	users := newMemUserStore()
	svc, _ := newTestAuthService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter22!", DisplayName: "Jo"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "jo@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
