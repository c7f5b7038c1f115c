package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/salto-club/internal/domain/user"
)

// ChangeFunc is told about every auth transition the gate observes.
type ChangeFunc func(event user.AuthEvent, s *user.Session)

// Gate tracks whether the member is signed in. Start restores any existing
// session and subscribes to changes; Stop unsubscribes. A Start whose restore
// failed leaves the gate stopped.
type Gate struct {
	Auth     user.AuthProvider
	OnChange ChangeFunc

	mu          sync.Mutex
	loggedIn    bool
	unsubscribe func()
}

func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.mu.Unlock()
		return nil
	}
	g.unsubscribe = g.Auth.OnSessionChange(g.observe)
	g.mu.Unlock()

	s, err := g.Auth.CurrentSession(ctx)
	if err != nil {
		// Unsubscribed again so a later Start can retry the restore.
		g.Stop()
		return fmt.Errorf("restore session: %w", err)
	}
	g.observe(user.EventInitialSession, s)
	return nil
}

// Stop is safe to call more than once.
func (g *Gate) Stop() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (g *Gate) LoggedIn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loggedIn
}

// MarkSignedOut clears the flag without waiting for the backend to confirm.
func (g *Gate) MarkSignedOut() {
	g.mu.Lock()
	g.loggedIn = false
	g.mu.Unlock()
}

func (g *Gate) observe(event user.AuthEvent, s *user.Session) {
	g.mu.Lock()
	g.loggedIn = s != nil
	g.mu.Unlock()
	slog.Debug("auth_event", "event", string(event), "logged_in", s != nil)
	if g.OnChange != nil {
		g.OnChange(event, s)
	}
}
