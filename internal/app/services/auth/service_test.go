package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/services/auth"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newService() *auth.Service {
	return &auth.Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{},
		Tokens:    security.RandomTokenGenerator{},
	}
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterParams{
		Email:    " Host@Example.com ",
		Name:     "Hanna",
		Password: "correct-horse",
		Roles:    []string{"host"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "host@example.com", result.User.Email)
	assert.Equal(t, domainuser.RoleSet{domainuser.RoleHost}, result.User.Roles)

	resolved, err := svc.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, resolved.User.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	params := auth.RegisterParams{Email: "dup@example.com", Name: "First", Password: "password-1"}
	_, err := svc.Register(ctx, params)
	require.NoError(t, err)

	params.Name = "Second"
	_, err = svc.Register(ctx, params)
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), auth.RegisterParams{
		Email:    "short@example.com",
		Name:     "Short",
		Password: "seven77",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), auth.RegisterParams{
		Email:    "not-an-address",
		Name:     "Nia",
		Password: "password-1",
	})
	assert.ErrorIs(t, err, domainuser.ErrEmailInvalid)
}

func TestRegisterNeverGrantsAdmin(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), auth.RegisterParams{
		Email:    "root@example.com",
		Name:     "Root",
		Password: "password-1",
		Roles:    []string{"admin"},
	})
	assert.ErrorIs(t, err, auth.ErrRoleNotAllowed)

	_, err = svc.Register(context.Background(), auth.RegisterParams{
		Email:    "root@example.com",
		Name:     "Root",
		Password: "password-1",
		Roles:    []string{"superuser"},
	})
	assert.ErrorIs(t, err, domainuser.ErrInvalidRole)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{Email: "guest@example.com", Name: "Gus", Password: "password-1"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, auth.LoginParams{Email: "Guest@Example.com", Password: "password-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "guest@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "nobody@example.com", Password: "password-1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterParams{Email: "out@example.com", Name: "Olive", Password: "password-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveExpiredSession(t *testing.T) {
	svc := newService()
	svc.SessionTTL = time.Nanosecond
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterParams{Email: "late@example.com", Name: "Lena", Password: "password-1"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
