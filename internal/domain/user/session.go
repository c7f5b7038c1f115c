package user

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCode        = errors.New("invalid or expired confirmation code")
)

// Session is what the auth backend hands out after a successful sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// ExpiresWithin reports whether the access token lapses before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(s.ExpiresAt)
}

type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Listener receives auth transitions. session is nil after sign-out.
type Listener func(event AuthEvent, session *Session)

type SignUpOptions struct {
	// RedirectTo is where the confirmation link sends the member back to.
	RedirectTo string
}

// AuthProvider is the session capability of the hosted backend.
type AuthProvider interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(l Listener) (unsubscribe func())
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) (User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// ExchangeCode completes sign-in from the code carried by a confirmation link.
	ExchangeCode(ctx context.Context, code string) (*Session, error)
}

// SessionStorage is where an auth client keeps its session between calls.
type SessionStorage interface {
	Load() *Session
	Save(s *Session)
	Clear()
	// Get and Put hold auxiliary values such as a PKCE verifier.
	Get(key string) string
	Put(key, value string)
}

// MemoryStorage is a SessionStorage kept in process memory. Version increases on every write.
type MemoryStorage struct {
	mu      sync.Mutex
	session *Session
	values  map[string]string
	version uint64
}

func NewMemoryStorage(initial *Session, values map[string]string) *MemoryStorage {
	m := &MemoryStorage{session: initial, values: map[string]string{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MemoryStorage) Load() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	cp := *m.session
	return &cp
}

func (m *MemoryStorage) Save(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.session = nil
	} else {
		cp := *s
		m.session = &cp
	}
	m.version++
}

func (m *MemoryStorage) Clear() { m.Save(nil) }

func (m *MemoryStorage) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemoryStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.values, key)
	} else {
		m.values[key] = value
	}
	m.version++
}

// Version lets callers notice writes they have not persisted yet.
func (m *MemoryStorage) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Values returns a copy of the auxiliary values.
func (m *MemoryStorage) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
