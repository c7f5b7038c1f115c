package web

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/example/salto-club/internal/domain/user"
)

const (
	sessionName   = "salto_session"
	sessionMaxAge = 30 * 24 * time.Hour
)

// cookieState is what a browser carries between requests: which controller
// serves it and the auth session that controller persisted.
type cookieState struct {
	ClientID string            `json:"cid"`
	Session  *user.Session     `json:"s,omitempty"`
	Values   map[string]string `json:"v,omitempty"`
}

type SessionManager struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewSessionManager encrypts the cookie when blockKey is set. secure marks the
// cookie HTTPS-only.
func NewSessionManager(hashKey, blockKey []byte, secure bool) *SessionManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(sessionMaxAge.Seconds()))
	return &SessionManager{sc: sc, secure: secure}
}

func (s *SessionManager) Save(w http.ResponseWriter, st cookieState) error {
	encoded, err := s.sc.Encode(sessionName, st)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: encoded, Path: "/",
		HttpOnly: true, SameSite: http.SameSiteLaxMode, Secure: s.secure,
		MaxAge: int(sessionMaxAge.Seconds()),
	})
	return nil
}

func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, SameSite: http.SameSiteLaxMode, Secure: s.secure,
	})
}

// Load returns the zero state when the cookie is missing or does not verify.
func (s *SessionManager) Load(r *http.Request) cookieState {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return cookieState{}
	}
	var st cookieState
	if err := s.sc.Decode(sessionName, c.Value, &st); err != nil {
		return cookieState{}
	}
	return st
}
