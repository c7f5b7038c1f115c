package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// protect wraps next with CSRF checks. A nil key turns them off. plaintext
// lets the checks accept http:// origins during local development.
func protect(key []byte, secure bool, trusted []string) func(http.Handler) http.Handler {
	if key == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	csrfProtect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trusted),
	)
	return func(next http.Handler) http.Handler {
		h := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}
}

type ctxKeyClient struct{}

// withClient attaches the browser's controller to the request.
func (s *Server) withClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := s.clients.Acquire(r.Context(), s.sessions.Load(r))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyClient{}, c)))
	})
}

func clientFrom(r *http.Request) *client {
	c, _ := r.Context().Value(ctxKeyClient{}).(*client)
	return c
}
