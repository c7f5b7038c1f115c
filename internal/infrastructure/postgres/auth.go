package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/infrastructure/email"
	"github.com/example/salto-club/internal/internaltypes"
)

const (
	refreshMargin   = time.Minute
	refreshTTL      = 30 * 24 * time.Hour
	confirmationTTL = 24 * time.Hour
)

type MemberStore interface {
	Create(ctx context.Context, m Member) error
	GetByEmail(ctx context.Context, email string) (Member, error)
	GetByID(ctx context.Context, id string) (Member, error)
	Confirm(ctx context.Context, id string, at time.Time) error
}

type CodeStore interface {
	Create(ctx context.Context, code, memberID string, expiresAt time.Time) error
	Consume(ctx context.Context, code string, now time.Time) (string, error)
}

type RefreshStore interface {
	Create(ctx context.Context, token, memberID string, expiresAt time.Time) error
	Revoke(ctx context.Context, token string, now time.Time) (string, error)
}

// AuthStores are the tables and services LocalAuth works against. They are
// shared by every browser; only the session storage is per member.
type AuthStores struct {
	Members MemberStore
	Codes   CodeStore
	Refresh RefreshStore
	Signer  *Signer
	Mail    email.Sender
	From    string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

// LocalAuth is the user.AuthProvider of the self-hosted backend. It hashes
// passwords with bcrypt, mails confirmation codes and signs access tokens.
type LocalAuth struct {
	AuthStores
	storage user.SessionStorage

	mu        sync.Mutex
	listeners map[int]user.Listener
	nextID    int
}

func NewLocalAuth(stores AuthStores, storage user.SessionStorage) *LocalAuth {
	if stores.Now == nil {
		stores.Now = time.Now
	}
	if stores.BcryptCost == 0 {
		stores.BcryptCost = bcrypt.DefaultCost
	}
	return &LocalAuth{AuthStores: stores, storage: storage, listeners: map[int]user.Listener{}}
}

func (a *LocalAuth) OnSessionChange(l user.Listener) func() {
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

func (a *LocalAuth) notify(event user.AuthEvent, s *user.Session) {
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

// issue signs an access token and stores a fresh refresh token for m.
func (a *LocalAuth) issue(ctx context.Context, m Member) (*user.Session, error) {
	access, exp, err := a.Signer.Issue(m.ID, m.Email)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	if err := a.Refresh.Create(ctx, refresh, m.ID, a.Now().Add(refreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &user.Session{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp, User: m.User}, nil
}

func (a *LocalAuth) start(event user.AuthEvent, s *user.Session) *user.Session {
	a.storage.Save(s)
	a.notify(event, s)
	return s
}

func (a *LocalAuth) CurrentSession(ctx context.Context) (*user.Session, error) {
	s := a.storage.Load()
	if s == nil || !s.ExpiresWithin(a.Now(), refreshMargin) {
		return s, nil
	}
	memberID, err := a.Refresh.Revoke(ctx, s.RefreshToken, a.Now())
	if errors.Is(err, internaltypes.ErrNotFound) {
		slog.Info("auth_event", "event", "refresh_rejected", "user_id", s.User.ID)
		a.storage.Clear()
		a.notify(user.EventSignedOut, nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	m, err := a.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	fresh, err := a.issue(ctx, m)
	if err != nil {
		return nil, err
	}
	return a.start(user.EventTokenRefreshed, fresh), nil
}

func (a *LocalAuth) AccessToken(ctx context.Context) (string, error) {
	s, err := a.CurrentSession(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.AccessToken, nil
}

func confirmationLink(redirectTo, code string) string {
	sep := "?"
	if strings.Contains(redirectTo, "?") {
		sep = "&"
	}
	return redirectTo + sep + "code=" + url.QueryEscape(code)
}

// SignUp creates an unconfirmed member and mails the link that confirms it.
func (a *LocalAuth) SignUp(ctx context.Context, addr, password string, opts user.SignUpOptions) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.BcryptCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}
	m := Member{
		User:         user.User{ID: uuid.NewString(), Email: addr, CreatedAt: a.Now().UTC()},
		PasswordHash: hash,
	}
	if err := a.Members.Create(ctx, m); err != nil {
		return user.User{}, err
	}
	code := uuid.NewString()
	if err := a.Codes.Create(ctx, code, m.ID, a.Now().Add(confirmationTTL)); err != nil {
		return user.User{}, fmt.Errorf("store confirmation code: %w", err)
	}
	req, err := email.ConfirmationRequest(addr, user.DisplayNameFromEmail(addr), confirmationLink(opts.RedirectTo, code))
	if err != nil {
		return user.User{}, err
	}
	req.From = a.From
	if _, err := a.Mail.Send(ctx, req); err != nil {
		return user.User{}, fmt.Errorf("send confirmation: %w", err)
	}
	return m.User, nil
}

func (a *LocalAuth) SignInWithPassword(ctx context.Context, addr, password string) (*user.Session, error) {
	m, err := a.Members.GetByEmail(ctx, addr)
	if errors.Is(err, internaltypes.ErrNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(password)) != nil {
		return nil, user.ErrInvalidCredentials
	}
	if !m.Confirmed() {
		return nil, user.ErrEmailNotConfirmed
	}
	s, err := a.issue(ctx, m)
	if err != nil {
		return nil, err
	}
	return a.start(user.EventSignedIn, s), nil
}

// SignOut clears local state first; a refresh token that is already gone is not an error.
func (a *LocalAuth) SignOut(ctx context.Context) error {
	s := a.storage.Load()
	a.storage.Clear()
	a.notify(user.EventSignedOut, nil)
	if s == nil {
		return nil
	}
	if _, err := a.Refresh.Revoke(ctx, s.RefreshToken, a.Now()); err != nil && !errors.Is(err, internaltypes.ErrNotFound) {
		return err
	}
	return nil
}

func (a *LocalAuth) ExchangeCode(ctx context.Context, code string) (*user.Session, error) {
	memberID, err := a.Codes.Consume(ctx, code, a.Now())
	if errors.Is(err, internaltypes.ErrNotFound) {
		return nil, user.ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if err := a.Members.Confirm(ctx, memberID, a.Now().UTC()); err != nil {
		return nil, err
	}
	m, err := a.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	s, err := a.issue(ctx, m)
	if err != nil {
		return nil, err
	}
	return a.start(user.EventSignedIn, s), nil
}
