// Package auth models opaque bearer sessions. A token carries no embedded
// claims; everything a request needs is resolved server side from the store,
// so revocation is a plain delete.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Session binds a token to an account for a bounded lifetime. Roles are
// frozen at issue time; a role granted later needs a fresh login to show up.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     user.RoleSet
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssueParams struct {
	Token    Token
	UserID   user.ID
	Roles    user.RoleSet
	TTL      time.Duration
	IssuedAt time.Time
}

// Issue mints a session for the account. The expiry is fixed here once; the
// stores only ever compare against it.
func Issue(params IssueParams) (*Session, error) {
	token := Token(strings.TrimSpace(string(params.Token)))
	if token == "" {
		return nil, ErrTokenRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if params.TTL <= 0 {
		return nil, ErrTTLInvalid
	}
	issued := params.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	issued = issued.UTC()
	return &Session{
		Token:     token,
		UserID:    params.UserID,
		Roles:     append(user.RoleSet(nil), params.Roles...),
		IssuedAt:  issued,
		ExpiresAt: issued.Add(params.TTL),
	}, nil
}

// Expired treats the expiry instant itself as expired.
func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
