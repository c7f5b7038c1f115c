package cli

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/salto-club/internal/interfaces/web"
)

const sweepInterval = time.Minute

func NewServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the member portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireWebKeys(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			backend, closeBackend, err := openBackend(ctx, cfg, migrateUp)
			if err != nil {
				return err
			}
			defer closeBackend()

			clients := web.NewRegistry(backend, cfg.ClientIdle)
			defer clients.Close()
			go func() { _ = clients.Sweeper(sweepInterval).Run(ctx) }()

			var trusted []string
			if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
				trusted = append(trusted, u.Host)
			}
			srv, err := web.New(web.Options{
				Sessions:       web.NewSessionManager(cfg.SessionHashKey, cfg.SessionBlockKey, !cfg.DevMode),
				Clients:        clients,
				CSRFKey:        cfg.CSRFKey,
				Secure:         !cfg.DevMode,
				TrustedOrigins: trusted,
			})
			if err != nil {
				return err
			}
			return web.Start(ctx, cfg.HTTPAddr, srv.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "apply the schema on startup (postgres backend)")
	return cmd
}
