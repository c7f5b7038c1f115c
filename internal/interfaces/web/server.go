package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/internaltypes"
)

// backendTimeout bounds every call a request makes to the auth or row backend.
const backendTimeout = 10 * time.Second

type Options struct {
	Sessions *SessionManager
	Clients  *Registry
	// CSRFKey is 32 bytes; nil disables CSRF checks.
	CSRFKey        []byte
	Secure         bool
	TrustedOrigins []string
	Now            func() time.Time
}

type Server struct {
	sessions *SessionManager
	clients  *Registry
	tmpl     map[string]*template.Template
	protect  func(http.Handler) http.Handler
	now      func() time.Time
}

func New(opts Options) (*Server, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		sessions: opts.Sessions,
		clients:  opts.Clients,
		tmpl:     tmpl,
		protect:  protect(opts.CSRFKey, opts.Secure, opts.TrustedOrigins),
		now:      now,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.protect)
		r.Use(s.withClient)

		r.Get("/", s.handleShell)
		r.Get("/login", s.handleLogin)
		r.Post("/login", s.handleSignIn)
		r.Post("/login/mode", s.dispatch(func(*http.Request) (shell.Action, error) { return shell.ToggleSignUpMode{}, nil }))
		r.Post("/signup", s.handleSignUp)
		r.Get("/auth/callback", s.handleCallback)
		r.Post("/logout", s.handleSignOut)

		r.Get("/tabs/{tab}", s.dispatch(func(r *http.Request) (shell.Action, error) {
			t, err := shell.ParseTab(chi.URLParam(r, "tab"))
			return shell.SelectTab{Tab: t}, err
		}))

		r.Route("/booking", func(r chi.Router) {
			r.Post("/service", s.dispatch(func(r *http.Request) (shell.Action, error) {
				return shell.SelectService{Service: booking.Service(r.FormValue("service"))}, nil
			}))
			r.Post("/category", s.dispatch(func(r *http.Request) (shell.Action, error) {
				return shell.SelectCategory{Category: r.FormValue("category")}, nil
			}))
			r.Post("/date", s.dispatch(func(r *http.Request) (shell.Action, error) {
				return shell.SelectDate{Date: r.FormValue("date")}, nil
			}))
			r.Post("/slot", s.dispatch(func(r *http.Request) (shell.Action, error) {
				return shell.ClickSlot{Slot: r.FormValue("slot")}, nil
			}))
			r.Post("/continue", s.dispatch(func(*http.Request) (shell.Action, error) { return shell.ContinueBooking{}, nil }))
			r.Post("/unit", s.dispatch(func(r *http.Request) (shell.Action, error) {
				n, err := strconv.Atoi(r.FormValue("unit"))
				return shell.SelectUnit{Unit: n}, err
			}))
			r.Post("/back", s.dispatch(func(*http.Request) (shell.Action, error) { return shell.Back{}, nil }))
			r.Post("/partners", s.handleAddPartner)
			r.Post("/partners/{index}/remove", s.dispatch(func(r *http.Request) (shell.Action, error) {
				n, err := strconv.Atoi(chi.URLParam(r, "index"))
				return shell.RemovePartner{Index: n}, err
			}))
			r.Post("/reservations", s.dispatch(func(*http.Request) (shell.Action, error) { return shell.ViewReservations{}, nil }))
			r.Post("/confirm", s.handleConfirm)
			r.Post("/dismiss", s.dispatch(func(*http.Request) (shell.Action, error) { return shell.DismissConfirmation{}, nil }))
		})

		r.Post("/reservations/refresh", s.handleRefresh)
		r.Post("/reservations/{id}/cancel", s.handleCancel)

		r.Post("/bulletins", s.dispatch(func(r *http.Request) (shell.Action, error) {
			return shell.FilterBulletins{Tag: r.FormValue("tag")}, nil
		}))
		r.Post("/tournaments/join", s.dispatch(func(*http.Request) (shell.Action, error) { return shell.JoinTournament{}, nil }))
		r.Post("/tournaments/bracket", s.dispatch(func(r *http.Request) (shell.Action, error) {
			return shell.SetBracketView{Show: r.FormValue("show") == "1"}, nil
		}))
		r.Post("/favorites", s.dispatch(func(r *http.Request) (shell.Action, error) {
			return shell.ToggleFavorite{Match: r.FormValue("match")}, nil
		}))
		r.Post("/lessons/filter", s.dispatch(func(r *http.Request) (shell.Action, error) {
			return shell.FilterLessons{Level: r.FormValue("level")}, nil
		}))
		r.Post("/lessons/book", s.dispatch(func(r *http.Request) (shell.Action, error) {
			return shell.BookLesson{Instructor: r.FormValue("instructor")}, nil
		}))
	})
	return r
}

// persist writes the cookie when the client's auth storage changed. It must
// run before anything is written to w.
func (s *Server) persist(w http.ResponseWriter, c *client) {
	if !s.clients.dirty(c) {
		return
	}
	st := cookieState{ClientID: c.id, Session: c.storage.Load(), Values: c.storage.Values()}
	if err := s.sessions.Save(w, st); err != nil {
		slog.Error("session_cookie_failed", "client_id", c.id, "err", err)
	}
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	s.persist(w, clientFrom(r))
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.persist(w, clientFrom(r))
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("render_failed", "page", name, "err", err)
	}
}

// dispatch turns a form post into a local action and goes back to the shell.
func (s *Server) dispatch(build func(*http.Request) (shell.Action, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := clientFrom(r)
		a, err := build(r)
		if err == nil {
			err = c.ctrl.Dispatch(a)
		}
		if errors.Is(err, shell.ErrNotSignedIn) {
			s.redirect(w, r, "/login")
			return
		}
		if err != nil {
			slog.Debug("action_rejected", "path", r.URL.Path, "err", err)
		}
		if _, ok := a.(shell.ToggleSignUpMode); ok {
			s.redirect(w, r, "/login")
			return
		}
		s.redirect(w, r, "/")
	}
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	if !c.ctrl.Snapshot().LoggedIn {
		s.redirect(w, r, "/login")
		return
	}
	s.render(w, r, "shell", shellPage(c.ctrl.View(), s.now(), csrf.TemplateField(r)))
}

type loginPage struct {
	Title     string
	CSRFField template.HTML
	State     shell.State
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	if c.ctrl.Snapshot().LoggedIn {
		s.redirect(w, r, "/")
		return
	}
	s.render(w, r, "login", loginPage{Title: "Entrar", CSRFField: csrf.TemplateField(r), State: c.ctrl.View()})
}

func backendCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), backendTimeout)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := backendCtx(r)
	defer cancel()
	if err := clientFrom(r).ctrl.SignIn(ctx, r.FormValue("email"), r.FormValue("password")); err != nil {
		s.redirect(w, r, "/login")
		return
	}
	s.redirect(w, r, "/")
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := backendCtx(r)
	defer cancel()
	_ = clientFrom(r).ctrl.SignUp(ctx, r.FormValue("email"), r.FormValue("password"))
	s.redirect(w, r, "/login")
}

// handleCallback is where confirmation e-mail links land.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := backendCtx(r)
	defer cancel()
	if err := clientFrom(r).ctrl.CompleteSignIn(ctx, r.URL.Query().Get("code")); err != nil {
		s.redirect(w, r, "/login")
		return
	}
	s.redirect(w, r, "/")
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := backendCtx(r)
	defer cancel()
	_ = clientFrom(r).ctrl.SignOut(ctx)
	s.redirect(w, r, "/login")
}

// handleAddPartner takes the guest name from the form, as Enter and the
// add button both submit it.
func (s *Server) handleAddPartner(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	err := c.ctrl.Dispatch(shell.SetGuestName{Name: r.FormValue("name")})
	if err == nil {
		err = c.ctrl.Dispatch(shell.AddPartner{})
	}
	if errors.Is(err, shell.ErrNotSignedIn) {
		s.redirect(w, r, "/login")
		return
	}
	if err != nil {
		slog.Debug("action_rejected", "path", r.URL.Path, "err", err)
	}
	s.redirect(w, r, "/")
}

func (s *Server) effect(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, ctrl *shell.Controller) error) {
	ctx, cancel := backendCtx(r)
	defer cancel()
	err := run(ctx, clientFrom(r).ctrl)
	switch {
	case errors.Is(err, shell.ErrNotSignedIn):
		s.redirect(w, r, "/login")
		return
	case errors.Is(err, internaltypes.ErrInFlight):
		slog.Debug("duplicate_submit", "path", r.URL.Path)
	}
	s.redirect(w, r, "/")
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.effect(w, r, func(ctx context.Context, ctrl *shell.Controller) error { return ctrl.ConfirmBooking(ctx) })
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.effect(w, r, func(ctx context.Context, ctrl *shell.Controller) error { return ctrl.RefreshReservations(ctx) })
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := reservation.ID(strings.TrimSpace(chi.URLParam(r, "id")))
	s.effect(w, r, func(ctx context.Context, ctrl *shell.Controller) error { return ctrl.CancelReservation(ctx, id) })
}

// Start serves h until ctx ends, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("http_listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
