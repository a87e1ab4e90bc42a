// Package user holds the account aggregate every actor in the marketplace
// shares. One account can act as guest and host at the same time; the admin
// role is never self-assigned and only appears on accounts provisioned by an
// operator.
package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrEmailInvalid        = errors.New("user: email address is malformed")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

// Role names a capability an account holds. Roles gate route groups at the
// HTTP layer and nothing else; ownership checks stay per-aggregate.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// SelfAssignable reports whether an account may claim the role when it
// registers. Admin accounts are written to the store directly by operators.
func (r Role) SelfAssignable() bool {
	return r == RoleGuest || r == RoleHost
}

// ParseRole canonicalizes a raw role name.
func ParseRole(raw string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleGuest, RoleHost, RoleAdmin:
		return role, nil
	default:
		return "", ErrInvalidRole
	}
}

// RoleSet is a duplicate-free list of roles in first-granted order.
type RoleSet []Role

// NewRoleSet parses raw role names into a set, dropping repeats.
func NewRoleSet(raw ...string) (RoleSet, error) {
	set := make(RoleSet, 0, len(raw))
	for _, name := range raw {
		role, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		set = set.With(role)
	}
	return set, nil
}

// With returns the set extended by role, unchanged if already present.
func (rs RoleSet) With(role Role) RoleSet {
	if rs.Has(role) {
		return rs
	}
	return append(rs, role)
}

func (rs RoleSet) Has(role Role) bool {
	for _, held := range rs {
		if held == role {
			return true
		}
	}
	return false
}

func (rs RoleSet) Strings() []string {
	out := make([]string, 0, len(rs))
	for _, role := range rs {
		out = append(out, string(role))
	}
	return out
}

type User struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	List(ctx context.Context, params ListParams) ([]*User, int, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Roles        RoleSet
	CreatedAt    time.Time
}

// NewUser builds a validated account. The email is lowercased and must look
// like an address; an account with no roles starts as a plain guest.
func NewUser(params CreateParams) (*User, error) {
	id := ID(strings.TrimSpace(string(params.ID)))
	if id == "" {
		return nil, ErrIDRequired
	}
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}

	roles := make(RoleSet, 0, len(params.Roles))
	for _, raw := range params.Roles {
		role, err := ParseRole(string(raw))
		if err != nil {
			return nil, err
		}
		roles = roles.With(role)
	}
	if len(roles) == 0 {
		roles = RoleSet{RoleGuest}
	}

	at := params.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	return &User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: params.PasswordHash,
		Roles:        roles,
		CreatedAt:    at,
		UpdatedAt:    at,
	}, nil
}

// HasRole accepts raw role spellings so HTTP-layer strings can be checked
// without pre-parsing.
func (u *User) HasRole(role Role) bool {
	parsed, err := ParseRole(string(role))
	if err != nil {
		return false
	}
	return u.Roles.Has(parsed)
}

// NormalizeEmail lowercases and trims an address and applies the minimal
// shape check the store relies on: one '@' with text on both sides.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.IndexByte(email[at+1:], '@') >= 0 {
		return "", ErrEmailInvalid
	}
	return email, nil
}
