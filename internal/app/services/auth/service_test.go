package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func registerParams() RegisterParams {
	return RegisterParams{
		Username: "alice",
		Password: "sup3r-secret",
		Email:    "alice@example.com",
		Phone:    "+49123",
	}
}

func TestRegisterIssuesSession(t *testing.T) {
	svc := newService(t)

	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.User.Username)
	assert.NotEqual(t, "sup3r-secret", result.User.PasswordHash)

	resolved, err := svc.ResolveToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, resolved.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	params := registerParams()
	params.Email = "other@example.com"
	_, err = svc.Register(context.Background(), params)
	assert.ErrorIs(t, err, domainuser.ErrUsernameTaken)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newService(t)

	params := registerParams()
	params.Password = "short"
	_, err := svc.Register(context.Background(), params)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterBadEmail(t *testing.T) {
	svc := newService(t)

	params := registerParams()
	params.Email = "not-an-email"
	_, err := svc.Register(context.Background(), params)
	assert.ErrorIs(t, err, domainuser.ErrInvalidEmail)
}

func TestLogin(t *testing.T) {
	svc := newService(t)
	_, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginParams{Username: "alice", Password: "sup3r-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(t)
	_, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginParams{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUserIndistinguishableFromWrongPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.Login(context.Background(), LoginParams{Username: "nobody", Password: "whatever123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newService(t)
	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Token))

	_, err = svc.ResolveToken(context.Background(), result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveTokenExpired(t *testing.T) {
	svc := newService(t)
	svc.SessionTTL = time.Nanosecond

	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.ResolveToken(context.Background(), result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveTokenUnknown(t *testing.T) {
	svc := newService(t)

	_, err := svc.ResolveToken(context.Background(), "bogus-token")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
