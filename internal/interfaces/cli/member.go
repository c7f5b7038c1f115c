package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/salto-club/internal/application/usecases"
	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/infrastructure/config"
	"github.com/example/salto-club/internal/infrastructure/postgres"
)

func NewMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Member management (postgres backend)",
	}
	cmd.AddCommand(newMemberAddCmd())
	return cmd
}

func newMemberAddCmd() *cobra.Command {
	var email, password string
	var confirmed bool
	c := &cobra.Command{
		Use:   "add",
		Short: "Create a member account",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := usecases.Credentials{Email: user.NormalizeEmail(email), Password: password}
			if creds.Email == "" || creds.Password == "" {
				return usecases.ErrMissingCredentials
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Backend != config.BackendPostgres {
				return fmt.Errorf("member add needs BACKEND=postgres; create supabase users from the dashboard")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			pool, err := openPool(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			m := postgres.Member{
				User:         user.User{ID: uuid.NewString(), Email: creds.Email, CreatedAt: now},
				PasswordHash: hash,
			}
			if confirmed {
				m.ConfirmedAt = &now
			}
			if err := postgres.NewMemberRepo(pool).Create(ctx, m); err != nil {
				return err
			}
			p := user.Profile{ID: m.ID, DisplayName: user.DisplayNameFromEmail(creds.Email), UpdatedAt: now}
			if err := postgres.NewProfileRepo(pool).Upsert(ctx, p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created member:", m.Email, m.ID)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "e-mail address")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().BoolVar(&confirmed, "confirmed", false, "skip e-mail confirmation")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
