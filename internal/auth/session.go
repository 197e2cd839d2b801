package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/passport-portal/internal/domain"
)

// ErrNoSession is returned when a cookie does not resolve to a live session.
var ErrNoSession = errors.New("no active session")

// Session is the server-side record of an authenticated browser. The role is
// cached at login time so gates do not hit the users table.
type Session struct {
	ID     string      `json:"-"`
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// SessionStore persists sessions out of process so they survive worker restarts.
type SessionStore interface {
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "session:"

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore returns a Redis-backed store.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	session.ID = id
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}

// cookieClaims is the signed payload carried by the session cookie. The
// cookie only names the server-side session; all state lives in the store.
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionManager issues, resolves and destroys sessions. The cookie value is
// an HS256-signed token so a tampered cookie fails before the store is hit.
type SessionManager struct {
	store      SessionStore
	secret     []byte
	cookieName string
	ttl        time.Duration
}

// NewSessionManager builds a manager.
func NewSessionManager(store SessionStore, secret, cookieName string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionManager{store: store, secret: []byte(secret), cookieName: cookieName, ttl: ttl}
}

// CookieName returns the name of the session cookie.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// TTL returns the session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session for the user and returns the signed cookie value.
func (m *SessionManager) Issue(ctx context.Context, user *domain.User) (string, error) {
	session := &Session{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Role:   user.Role,
	}
	if err := m.store.Save(ctx, session, m.ttl); err != nil {
		return "", err
	}

	now := time.Now()
	claims := &cookieClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Resolve validates the cookie signature and loads the session it names.
func (m *SessionManager) Resolve(ctx context.Context, cookieValue string) (*Session, error) {
	id, err := m.sessionID(cookieValue)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.store.Get(ctx, id)
}

// Destroy removes the session unconditionally. An unparseable cookie is
// treated as already logged out.
func (m *SessionManager) Destroy(ctx context.Context, cookieValue string) error {
	id, err := m.sessionID(cookieValue)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *SessionManager) sessionID(cookieValue string) (string, error) {
	if cookieValue == "" {
		return "", ErrNoSession
	}
	parsed, err := jwt.ParseWithClaims(cookieValue, &cookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*cookieClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.SessionID, nil
}
