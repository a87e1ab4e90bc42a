// Package auth implements registration, login and token resolution on top of
// the user repository and session store ports.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrRoleNotAllowed     = errors.New("auth: role cannot be self-assigned")

	errMisconfigured = errors.New("auth: service is missing a dependency")
)

const (
	defaultSessionTTL = 24 * time.Hour
	minPasswordRunes  = 8
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service is wired once in main and shared by the gin auth handler and the
// authentication middleware.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
	Roles    []string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

// Register creates the account and logs it straight in, returning the first
// session token alongside the user.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.wired(); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Password) < minPasswordRunes {
		return nil, ErrPasswordTooShort
	}
	roles, err := signupRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	account, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, account); err != nil {
		return nil, err
	}
	token, err := s.startSession(ctx, account)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("account registered", "user_id", account.ID, "email", account.Email, "roles", account.Roles.Strings())
	}
	return &AuthResult{User: account, Token: token}, nil
}

// Login verifies the password and opens a new session. Unknown address and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.wired(); err != nil {
		return nil, err
	}
	email, err := domainuser.NormalizeEmail(params.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	account, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(account.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.startSession(ctx, account)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("account authenticated", "user_id", account.ID)
	}
	return &AuthResult{User: account, Token: token}, nil
}

// Logout drops the session. A blank or already-deleted token is not an error;
// the client's goal state is reached either way.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.wired(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, domainauth.Token(token)); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("session terminated")
	}
	return nil
}

// ResolveToken maps a bearer token to its account. A session whose account
// has vanished is purged and reported as not found, same as an expired one.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.wired(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	account, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, session.Token)
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return &ResolveResult{User: account, Session: session}, nil
}

func (s *Service) startSession(ctx context.Context, account *domainuser.User) (string, error) {
	raw, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	session, err := domainauth.Issue(domainauth.IssueParams{
		Token:    domainauth.Token(raw),
		UserID:   account.ID,
		Roles:    account.Roles,
		TTL:      ttl,
		IssuedAt: time.Now(),
	})
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return raw, nil
}

// signupRoles parses the requested roles for a registration. A role an
// account may not claim for itself is rejected outright rather than silently
// dropped, so the caller learns about the attempt.
func signupRoles(requested []string) (domainuser.RoleSet, error) {
	if len(requested) == 0 {
		return domainuser.RoleSet{domainuser.RoleGuest}, nil
	}
	set, err := domainuser.NewRoleSet(requested...)
	if err != nil {
		return nil, err
	}
	for _, role := range set {
		if !role.SelfAssignable() {
			return nil, ErrRoleNotAllowed
		}
	}
	return set, nil
}

func (s *Service) wired() error {
	if s.Users == nil || s.Sessions == nil || s.Passwords == nil || s.Tokens == nil {
		return errMisconfigured
	}
	return nil
}
