package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/salto-club/internal/application/scheduler"
	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/domain/user"
)

// Connector builds the backend capabilities of one browser around its session storage.
type Connector interface {
	Connect(storage user.SessionStorage) shell.Deps
}

type client struct {
	id      string
	ctrl    *shell.Controller
	storage *user.MemoryStorage

	startMu sync.Mutex
	started bool

	// guarded by Registry.mu
	lastSeen time.Time
	// saved is the storage version last written to the cookie.
	saved     uint64
	persisted bool
}

// Registry keeps one controller per browser and drops the idle ones.
type Registry struct {
	backend Connector
	idle    time.Duration
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

func NewRegistry(backend Connector, idle time.Duration) *Registry {
	return &Registry{backend: backend, idle: idle, now: time.Now, clients: map[string]*client{}}
}

// WithClock replaces the time source used for idle tracking and handed to controllers.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Acquire returns the controller for the browser's cookie, creating and
// starting one from the persisted session when none is held.
func (r *Registry) Acquire(ctx context.Context, st cookieState) *client {
	r.mu.Lock()
	c, ok := r.clients[st.ClientID]
	if !ok {
		id := st.ClientID
		if id == "" {
			id = uuid.NewString()
		}
		storage := user.NewMemoryStorage(st.Session, st.Values)
		deps := r.backend.Connect(storage)
		if deps.Now == nil {
			deps.Now = r.now
		}
		c = &client{
			id:        id,
			ctrl:      shell.New(deps),
			storage:   storage,
			saved:     storage.Version(),
			persisted: st.ClientID != "",
		}
		r.clients[id] = c
		slog.Debug("client_created", "client_id", id, "restored", st.Session != nil)
	}
	c.lastSeen = r.now()
	r.mu.Unlock()

	c.ensureStarted(ctx)
	return c
}

// ensureStarted restores the client's session once. A failed restore is
// retried on the browser's next request.
func (c *client) ensureStarted(ctx context.Context) {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return
	}
	if err := c.ctrl.Start(ctx); err != nil {
		slog.Warn("client_start_failed", "client_id", c.id, "err", err)
		return
	}
	c.started = true
}

// dirty reports whether the cookie is behind the client's storage, and marks it saved.
func (r *Registry) dirty(c *client) bool {
	v := c.storage.Version()
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.persisted && c.saved == v {
		return false
	}
	c.saved, c.persisted = v, true
	return true
}

// Sweep stops and forgets clients unseen for longer than the idle timeout.
func (r *Registry) Sweep(_ context.Context, now time.Time) {
	r.mu.Lock()
	var stale []*client
	for id, c := range r.clients {
		if now.Sub(c.lastSeen) > r.idle {
			stale = append(stale, c)
			delete(r.clients, id)
		}
	}
	r.mu.Unlock()
	for _, c := range stale {
		c.ctrl.Stop()
	}
	if len(stale) > 0 {
		slog.Info("clients_swept", "count", len(stale))
	}
}

// Sweeper runs Sweep every interval.
func (r *Registry) Sweeper(interval time.Duration) scheduler.Runner {
	return scheduler.Runner{Name: "client_sweep", Interval: interval, Task: r.Sweep, Now: r.now}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close stops every client.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.clients
	r.clients = map[string]*client{}
	r.mu.Unlock()
	for _, c := range all {
		c.ctrl.Stop()
	}
}
