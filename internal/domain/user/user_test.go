package user_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/user"
)

func TestNewUserDefaultsToGuest(t *testing.T) {
	u, err := user.NewUser(user.CreateParams{
		ID:           "u-1",
		Email:        " Alice@Example.COM ",
		Name:         "Alice",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleSet{user.RoleGuest}, u.Roles)
}

func TestNewUserDeduplicatesRoles(t *testing.T) {
	u, err := user.NewUser(user.CreateParams{
		ID:           "u-1",
		Email:        "bob@example.com",
		Name:         "Bob",
		PasswordHash: "hash",
		Roles:        user.RoleSet{"HOST", "guest", "host"},
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSet{user.RoleHost, user.RoleGuest}, u.Roles)
}

func TestNewUserRejectsUnknownRole(t *testing.T) {
	_, err := user.NewUser(user.CreateParams{
		ID:           "u-1",
		Email:        "bob@example.com",
		Name:         "Bob",
		PasswordHash: "hash",
		Roles:        user.RoleSet{"superuser"},
	})
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestNewUserRejectsMalformedEmail(t *testing.T) {
	for _, email := range []string{"no-at-sign", "@example.com", "trailing@", "two@@example.com"} {
		_, err := user.NewUser(user.CreateParams{
			ID:           "u-1",
			Email:        email,
			Name:         "Bob",
			PasswordHash: "hash",
		})
		assert.ErrorIs(t, err, user.ErrEmailInvalid, email)
	}
}

func TestHasRole(t *testing.T) {
	u, err := user.NewUser(user.CreateParams{
		ID:           "u-1",
		Email:        "bob@example.com",
		Name:         "Bob",
		PasswordHash: "hash",
		Roles:        user.RoleSet{user.RoleHost},
	})
	require.NoError(t, err)

	assert.True(t, u.HasRole(user.RoleHost))
	assert.True(t, u.HasRole("Host"))
	assert.False(t, u.HasRole(user.RoleAdmin))
	assert.False(t, u.HasRole("superuser"))
}

func TestNewRoleSetKeepsFirstSeenOrder(t *testing.T) {
	set, err := user.NewRoleSet("host", "GUEST", "host")
	require.NoError(t, err)
	assert.Equal(t, user.RoleSet{user.RoleHost, user.RoleGuest}, set)

	_, err = user.NewRoleSet("host", "root")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestSelfAssignable(t *testing.T) {
	assert.True(t, user.RoleGuest.SelfAssignable())
	assert.True(t, user.RoleHost.SelfAssignable())
	assert.False(t, user.RoleAdmin.SelfAssignable())
}
