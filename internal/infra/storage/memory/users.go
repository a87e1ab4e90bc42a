package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

// UserRepository is the dev-mode account store. Email lookups scan the map;
// outside production the store never holds more than a handful of accounts,
// so an index would be pure ceremony.
type UserRepository struct {
	mu       sync.RWMutex
	accounts map[domainuser.ID]*domainuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{accounts: make(map[domainuser.ID]*domainuser.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return copyAccount(account), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	needle, err := domainuser.NormalizeEmail(email)
	if err != nil {
		return nil, domainuser.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.accounts {
		if account.Email == needle {
			return copyAccount(account), nil
		}
	}
	return nil, domainuser.ErrNotFound
}

// Save upserts the account, enforcing the same email uniqueness the Mongo
// collection gets from its unique index.
func (r *UserRepository) Save(ctx context.Context, account *domainuser.User) error {
	if account == nil || strings.TrimSpace(string(account.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	email, err := domainuser.NormalizeEmail(account.Email)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.accounts {
		if existing.Email == email && id != account.ID {
			return domainuser.ErrEmailAlreadyUsed
		}
	}
	r.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *UserRepository) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	needle := strings.ToLower(strings.TrimSpace(params.Query))

	r.mu.RLock()
	matches := make([]*domainuser.User, 0, len(r.accounts))
	for _, account := range r.accounts {
		if needle == "" ||
			strings.Contains(strings.ToLower(account.Email), needle) ||
			strings.Contains(strings.ToLower(account.Name), needle) {
			matches = append(matches, copyAccount(account))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start, end := pageBounds(total, params.Limit, params.Offset)
	return matches[start:end], total, nil
}

// pageBounds clamps a limit/offset pair onto a slice of length total. The
// limit window matches the Mongo repository: default 50, ceiling 200.
func pageBounds(total, limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	start := min(max(offset, 0), total)
	return start, min(start+limit, total)
}

func copyAccount(u *domainuser.User) *domainuser.User {
	dup := *u
	dup.Roles = append(domainuser.RoleSet(nil), u.Roles...)
	return &dup
}

// SessionStore keeps bearer sessions in a single token map. Expired entries
// are dropped lazily the next time their token is presented.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[domainauth.Token]*domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domainauth.Token]*domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil || session.Token == "" {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = copySession(session)
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		delete(s.sessions, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func copySession(session *domainauth.Session) *domainauth.Session {
	dup := *session
	dup.Roles = append(domainuser.RoleSet(nil), session.Roles...)
	return &dup
}

var _ domainuser.Repository = (*UserRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
