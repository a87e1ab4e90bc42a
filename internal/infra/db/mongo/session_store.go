package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainauth "staybook/internal/domain/auth"
	"staybook/internal/domain/shared/fault"
	domainuser "staybook/internal/domain/user"
)

type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{col: db.Collection("sessions")}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	doc := sessionDocument{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Roles:     session.Roles.Strings(),
		IssuedAt:  session.IssuedAt.UnixMilli(),
		ExpiresAt: session.ExpiresAt.UnixMilli(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.Token}, doc, opts); err != nil {
		return fault.Store("session_save", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var doc sessionDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, fault.Store("session_load", err)
	}
	session := doc.toAggregate()
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fault.Store("session_delete", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fault.Store("session_delete_user", err)
	}
	return nil
}

type sessionDocument struct {
	Token     string   `bson:"_id"`
	UserID    string   `bson:"user_id"`
	Roles     []string `bson:"roles"`
	IssuedAt  int64    `bson:"issued_at"`
	ExpiresAt int64    `bson:"expires_at"`
}

func (d sessionDocument) toAggregate() *domainauth.Session {
	roles := make(domainuser.RoleSet, 0, len(d.Roles))
	for _, role := range d.Roles {
		roles = append(roles, domainuser.Role(role))
	}
	return &domainauth.Session{
		Token:     domainauth.Token(d.Token),
		UserID:    domainuser.ID(d.UserID),
		Roles:     roles,
		IssuedAt:  timestampToTime(d.IssuedAt),
		ExpiresAt: timestampToTime(d.ExpiresAt),
	}
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
