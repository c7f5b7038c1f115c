package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/salto-club/internal/infrastructure/config"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "saltoclub",
		Short:         "Salto Tennis Club member portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServerCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewKeysCmd())
	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewMemberCmd())
	cmd.AddCommand(NewReservationCmd())
	return cmd
}

// loadConfig reads .env and the environment and installs the logger at the configured level.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	return cfg, nil
}
