package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/infrastructure/supabase"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	prefer string
	body   []byte
}

type fakeProject struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []recorded
	routes map[string]func(w http.ResponseWriter, body []byte)
}

func newProject(t *testing.T) (*fakeProject, *supabase.Client) {
	p := &fakeProject{t: t, routes: map[string]func(http.ResponseWriter, []byte){}}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return p, supabase.New(srv.URL, "anon-key")
}

func (p *fakeProject) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	p.mu.Lock()
	p.calls = append(p.calls, recorded{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization"), r.Header.Get("Prefer"), body})
	h := p.routes[r.Method+" "+r.URL.Path]
	p.mu.Unlock()
	if r.Header.Get("apikey") != "anon-key" {
		p.t.Errorf("%s %s without apikey", r.Method, r.URL.Path)
	}
	if h == nil {
		http.Error(w, `{"message":"no route"}`, http.StatusNotFound)
		return
	}
	h(w, body)
}

func (p *fakeProject) last() recorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[len(p.calls)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func accessToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func sessionBody(t *testing.T, exp time.Time) map[string]any {
	return map[string]any{
		"access_token":  accessToken(t, exp),
		"refresh_token": "refresh-1",
		"user":          map[string]any{"id": "u-1", "email": "ana@club.com"},
	}
}

func TestSignInStoresSessionAndNotifies(t *testing.T) {
	p, c := newProject(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	p.routes["POST /auth/v1/token"] = func(w http.ResponseWriter, _ []byte) {
		writeJSON(w, http.StatusOK, sessionBody(t, exp))
	}
	storage := user.NewMemoryStorage(nil, nil)
	auth := supabase.NewAuth(c, storage)
	var events []user.AuthEvent
	unsub := auth.OnSessionChange(func(e user.AuthEvent, _ *user.Session) { events = append(events, e) })
	defer unsub()

	s, err := auth.SignInWithPassword(context.Background(), "ana@club.com", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v from token", s.ExpiresAt, exp)
	}
	if got := p.last().query; got != "grant_type=password" {
		t.Errorf("query = %q", got)
	}
	if storage.Load() == nil {
		t.Error("session not stored")
	}
	if len(events) != 1 || events[0] != user.EventSignedIn {
		t.Errorf("events = %v", events)
	}
}

func TestSignInErrors(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want error
	}{
		{"new gotrue", map[string]any{"code": 400, "error_code": "email_not_confirmed", "msg": "Email not confirmed"}, user.ErrEmailNotConfirmed},
		{"old gotrue", map[string]any{"error": "invalid_grant", "error_description": "Email not confirmed"}, user.ErrEmailNotConfirmed},
		{"bad password", map[string]any{"error": "invalid_grant", "error_description": "Invalid login credentials"}, user.ErrInvalidCredentials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, c := newProject(t)
			p.routes["POST /auth/v1/token"] = func(w http.ResponseWriter, _ []byte) {
				writeJSON(w, http.StatusBadRequest, tc.body)
			}
			_, err := supabase.NewAuth(c, user.NewMemoryStorage(nil, nil)).SignInWithPassword(context.Background(), "a@b.c", "x")
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestExpiringSessionIsRefreshed(t *testing.T) {
	p, c := newProject(t)
	fresh := time.Now().Add(time.Hour).Truncate(time.Second)
	p.routes["POST /auth/v1/token"] = func(w http.ResponseWriter, body []byte) {
		var in map[string]string
		_ = json.Unmarshal(body, &in)
		if in["refresh_token"] != "old-refresh" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "refresh_token_not_found", "msg": "Invalid Refresh Token"})
			return
		}
		writeJSON(w, http.StatusOK, sessionBody(t, fresh))
	}
	storage := user.NewMemoryStorage(&user.Session{AccessToken: "old", RefreshToken: "old-refresh", ExpiresAt: time.Now().Add(10 * time.Second)}, nil)
	auth := supabase.NewAuth(c, storage)
	var events []user.AuthEvent
	auth.OnSessionChange(func(e user.AuthEvent, _ *user.Session) { events = append(events, e) })

	s, err := auth.CurrentSession(context.Background())
	if err != nil || s == nil {
		t.Fatalf("CurrentSession = %v, %v", s, err)
	}
	if s.RefreshToken != "refresh-1" || !s.ExpiresAt.Equal(fresh) {
		t.Errorf("session = %+v", s)
	}
	if p.last().query != "grant_type=refresh_token" {
		t.Errorf("query = %q", p.last().query)
	}
	if len(events) != 1 || events[0] != user.EventTokenRefreshed {
		t.Errorf("events = %v", events)
	}

	storage.Save(&user.Session{AccessToken: "x", RefreshToken: "revoked", ExpiresAt: time.Now()})
	s, err = auth.CurrentSession(context.Background())
	if err != nil || s != nil {
		t.Fatalf("revoked refresh = %v, %v; want signed out", s, err)
	}
	if storage.Load() != nil {
		t.Error("storage not cleared")
	}
}

func TestSignUpThenExchangeCode(t *testing.T) {
	p, c := newProject(t)
	var challenge string
	p.routes["POST /auth/v1/signup"] = func(w http.ResponseWriter, body []byte) {
		var in map[string]string
		_ = json.Unmarshal(body, &in)
		challenge = in["code_challenge"]
		if in["code_challenge_method"] != "s256" || challenge == "" {
			t.Errorf("signup body = %s", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "u-9", "email": "bia@club.com"})
	}
	p.routes["POST /auth/v1/token"] = func(w http.ResponseWriter, body []byte) {
		var in map[string]string
		_ = json.Unmarshal(body, &in)
		if in["auth_code"] != "code-1" || in["code_verifier"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "bad_code_verifier", "msg": "invalid"})
			return
		}
		writeJSON(w, http.StatusOK, sessionBody(t, time.Now().Add(time.Hour)))
	}

	storage := user.NewMemoryStorage(nil, nil)
	auth := supabase.NewAuth(c, storage)
	u, err := auth.SignUp(context.Background(), "bia@club.com", "secret", user.SignUpOptions{RedirectTo: "https://club.example/auth/callback"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.ID != "u-9" {
		t.Errorf("user = %+v", u)
	}
	if got := p.last().query; got != "redirect_to=https%3A%2F%2Fclub.example%2Fauth%2Fcallback" {
		t.Errorf("signup query = %q", got)
	}
	if storage.Load() != nil {
		t.Error("session stored before confirmation")
	}

	if _, err := auth.ExchangeCode(context.Background(), "wrong"); !errors.Is(err, user.ErrInvalidCode) {
		t.Errorf("wrong code err = %v", err)
	}
	s, err := auth.ExchangeCode(context.Background(), "code-1")
	if err != nil || s == nil {
		t.Fatalf("ExchangeCode = %v, %v", s, err)
	}
	if p.last().query != "grant_type=pkce" {
		t.Errorf("query = %q", p.last().query)
	}
	if _, err := auth.ExchangeCode(context.Background(), "code-1"); !errors.Is(err, user.ErrInvalidCode) {
		t.Errorf("verifier reused: %v", err)
	}
}

func TestSignOutClearsEvenWhenRejected(t *testing.T) {
	p, c := newProject(t)
	p.routes["POST /auth/v1/logout"] = func(w http.ResponseWriter, _ []byte) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "expired"})
	}
	storage := user.NewMemoryStorage(&user.Session{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	auth := supabase.NewAuth(c, storage)
	if err := auth.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if storage.Load() != nil {
		t.Error("session kept after sign-out")
	}
	if got := p.last().auth; got != "Bearer tok" {
		t.Errorf("logout auth = %q", got)
	}
}

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

func TestReservationRows(t *testing.T) {
	p, c := newProject(t)
	p.routes["GET /rest/v1/reservations"] = func(w http.ResponseWriter, _ []byte) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 12, "service": "Courts", "category": "Padel", "date": "28 Dez", "time": "10:00 - 11:00", "court_number": "2", "partners": []string{"Carlos"}, "created_at": "2026-12-28T09:00:00.123456+00:00"},
		})
	}
	p.routes["POST /rest/v1/reservations"] = func(w http.ResponseWriter, body []byte) {
		var rows []map[string]any
		if err := json.Unmarshal(body, &rows); err != nil || len(rows) != 1 {
			t.Errorf("insert body = %s", body)
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad body"})
			return
		}
		rows[0]["id"] = 13
		rows[0]["created_at"] = "2026-12-28T09:05:00+00:00"
		writeJSON(w, http.StatusCreated, rows)
	}
	p.routes["DELETE /rest/v1/reservations"] = func(w http.ResponseWriter, _ []byte) {
		writeJSON(w, http.StatusOK, []any{})
	}
	store := supabase.NewReservations(c, staticToken("member-token"))
	ctx := context.Background()

	rs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rs) != 1 || rs[0].ID != "12" || *rs[0].CourtNumber != "2" {
		t.Errorf("List = %+v", rs)
	}
	if got := p.last(); got.query != "order=created_at.desc&select=%2A" || got.auth != "Bearer member-token" {
		t.Errorf("list request = %+v", got)
	}

	r, err := store.Insert(ctx, reservation.Draft{Service: "Wellness", Date: "29 Dez", Time: reservation.TimeRange{Start: "09:00", End: "10:00"}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if r.ID != "13" || r.Category != "Wellness" || r.CourtNumber != nil || r.Time != "09:00 - 10:00" {
		t.Errorf("Insert = %+v", r)
	}
	if p.last().prefer != "return=representation" {
		t.Errorf("prefer = %q", p.last().prefer)
	}

	if err := store.Delete(ctx, "99"); !errors.Is(err, reservation.ErrNotFound) {
		t.Errorf("Delete missing err = %v", err)
	}
	if got := p.last().query; got != "id=eq.99&select=id" {
		t.Errorf("delete query = %q", got)
	}
}

func TestProfileUpsert(t *testing.T) {
	p, c := newProject(t)
	p.routes["POST /rest/v1/profiles"] = func(w http.ResponseWriter, _ []byte) { w.WriteHeader(http.StatusCreated) }
	err := supabase.NewProfiles(c, staticToken("")).Upsert(context.Background(), user.Profile{ID: "u-1", DisplayName: "ana", UpdatedAt: time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got := p.last()
	if got.prefer != "resolution=merge-duplicates,return=minimal" || got.auth != "Bearer anon-key" {
		t.Errorf("request = %+v", got)
	}
	var rows []map[string]any
	_ = json.Unmarshal(got.body, &rows)
	if len(rows) != 1 || rows[0]["full_name"] != "ana" || rows[0]["id"] != "u-1" {
		t.Errorf("body = %s", got.body)
	}
}
