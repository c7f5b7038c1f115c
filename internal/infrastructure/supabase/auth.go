package supabase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/example/salto-club/internal/domain/user"
)

const (
	// refreshMargin is how close to expiry a session gets refreshed.
	refreshMargin = time.Minute
	verifierKey   = "pkce_code_verifier"
)

// Auth is a GoTrue client bound to one member's session storage. It persists
// the session, refreshes it before it lapses and reads confirmation codes.
type Auth struct {
	c       *Client
	storage user.SessionStorage
	now     func() time.Time

	mu        sync.Mutex
	listeners map[int]user.Listener
	nextID    int
}

func NewAuth(c *Client, storage user.SessionStorage) *Auth {
	return &Auth{c: c, storage: storage, now: time.Now, listeners: map[int]user.Listener{}}
}

type goTrueUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (u goTrueUser) domain() user.User {
	return user.User{ID: u.ID, Email: u.Email, ConfirmedAt: u.EmailConfirmedAt, CreatedAt: u.CreatedAt}
}

type goTrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         goTrueUser `json:"user"`
}

func (a *Auth) session(s goTrueSession) *user.Session {
	out := &user.Session{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, User: s.User.domain()}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = a.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	default:
		if exp, err := tokenExpiry(s.AccessToken); err == nil {
			out.ExpiresAt = exp
		}
	}
	return out
}

func (a *Auth) OnSessionChange(l user.Listener) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// notify runs listeners without holding a.mu so they may call back into Auth.
func (a *Auth) notify(event user.AuthEvent, s *user.Session) {
	a.mu.Lock()
	ls := make([]user.Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		ls = append(ls, l)
	}
	a.mu.Unlock()
	for _, l := range ls {
		l(event, s)
	}
}

// CurrentSession returns the stored session, refreshing it first when it is about to lapse.
// A refresh token the server no longer accepts ends the session.
func (a *Auth) CurrentSession(ctx context.Context) (*user.Session, error) {
	s := a.storage.Load()
	if s == nil || !s.ExpiresWithin(a.now(), refreshMargin) {
		return s, nil
	}
	var out goTrueSession
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": s.RefreshToken},
	}, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		slog.Info("auth_event", "event", "refresh_rejected", "user_id", s.User.ID, "err", err)
		a.storage.Clear()
		a.notify(user.EventSignedOut, nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	fresh := a.session(out)
	a.storage.Save(fresh)
	a.notify(user.EventTokenRefreshed, fresh)
	return fresh, nil
}

// AccessToken is the bearer for row requests: the member's token, or the anon key when signed out.
func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	s, err := a.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return s.AccessToken, nil
}

func newVerifier() (verifier, challenge string, err error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// SignUp registers the member. The confirmation link carries a PKCE code that
// ExchangeCode can redeem from the same storage.
func (a *Auth) SignUp(ctx context.Context, email, password string, opts user.SignUpOptions) (user.User, error) {
	verifier, challenge, err := newVerifier()
	if err != nil {
		return user.User{}, fmt.Errorf("pkce verifier: %w", err)
	}
	q := url.Values{}
	if opts.RedirectTo != "" {
		q.Set("redirect_to", opts.RedirectTo)
	}
	// Depending on project settings GoTrue answers with a bare user or a full session.
	var out struct {
		goTrueUser
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		ExpiresIn    int64       `json:"expires_in"`
		ExpiresAt    int64       `json:"expires_at"`
		User         *goTrueUser `json:"user"`
	}
	err = a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		query:  q,
		body: map[string]string{
			"email":                 email,
			"password":              password,
			"code_challenge":        challenge,
			"code_challenge_method": "s256",
		},
	}, &out)
	if err != nil {
		return user.User{}, err
	}
	a.storage.Put(verifierKey, verifier)
	if out.AccessToken != "" && out.User != nil {
		s := a.session(goTrueSession{
			AccessToken:  out.AccessToken,
			RefreshToken: out.RefreshToken,
			ExpiresIn:    out.ExpiresIn,
			ExpiresAt:    out.ExpiresAt,
			User:         *out.User,
		})
		a.storage.Save(s)
		a.notify(user.EventSignedIn, s)
		return s.User, nil
	}
	return out.goTrueUser.domain(), nil
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*user.Session, error) {
	var out goTrueSession
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, signInError(err)
	}
	s := a.session(out)
	a.storage.Save(s)
	a.notify(user.EventSignedIn, s)
	return s, nil
}

func signInError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Code == "email_not_confirmed" || strings.Contains(apiErr.Message, "Email not confirmed") {
		return fmt.Errorf("%w: %s", user.ErrEmailNotConfirmed, apiErr.Message)
	}
	if apiErr.Status == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", user.ErrInvalidCredentials, apiErr.Message)
	}
	return err
}

// SignOut revokes the session server-side. Local state is cleared even if that fails.
func (a *Auth) SignOut(ctx context.Context) error {
	s := a.storage.Load()
	a.storage.Clear()
	a.notify(user.EventSignedOut, nil)
	if s == nil {
		return nil
	}
	err := a.c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", bearer: s.AccessToken}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
		return nil
	}
	return err
}

func (a *Auth) ExchangeCode(ctx context.Context, code string) (*user.Session, error) {
	verifier := a.storage.Get(verifierKey)
	if verifier == "" {
		return nil, user.ErrInvalidCode
	}
	var out goTrueSession
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"pkce"}},
		body:   map[string]string{"auth_code": code, "code_verifier": verifier},
	}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return nil, fmt.Errorf("%w: %s", user.ErrInvalidCode, apiErr.Message)
		}
		return nil, err
	}
	a.storage.Put(verifierKey, "")
	s := a.session(out)
	a.storage.Save(s)
	a.notify(user.EventSignedIn, s)
	return s, nil
}
