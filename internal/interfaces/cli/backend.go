package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/salto-club/internal/infrastructure/config"
	"github.com/example/salto-club/internal/infrastructure/email"
	"github.com/example/salto-club/internal/infrastructure/postgres"
	"github.com/example/salto-club/internal/infrastructure/supabase"
	"github.com/example/salto-club/internal/interfaces/web"
)

func mailer(cfg config.Config) email.Sender {
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, confirmation e-mails are only logged")
		return email.NewNoopSender()
	}
	return email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
}

func openPool(ctx context.Context, cfg config.Config, migrate bool) (*pgxpool.Pool, error) {
	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return pool, nil
}

// openBackend returns the configured backend and a func releasing what it holds.
func openBackend(ctx context.Context, cfg config.Config, migrate bool) (web.Connector, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := openPool(ctx, cfg, migrate)
		if err != nil {
			return nil, nil, err
		}
		signer := postgres.NewSigner(cfg.JWTSecret, cfg.BaseURL)
		b := postgres.NewBackend(pool, signer, mailer(cfg), cfg.EmailFrom, cfg.CallbackURL())
		return b, pool.Close, nil
	default:
		c := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		return supabase.Backend{Client: c, RedirectTo: cfg.CallbackURL()}, func() {}, nil
	}
}
