package cli

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

func NewKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate SESSION_HASH_KEY, SESSION_BLOCK_KEY, CSRF_KEY and JWT_SECRET values",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range []string{"SESSION_HASH_KEY", "SESSION_BLOCK_KEY", "CSRF_KEY"} {
				b := make([]byte, 32)
				if _, err := rand.Read(b); err != nil {
					return err
				}
				fmt.Fprintf(out, "export %s=%s\n", name, base64.StdEncoding.EncodeToString(b))
			}
			secret := make([]byte, 48)
			if _, err := rand.Read(secret); err != nil {
				return err
			}
			fmt.Fprintf(out, "export JWT_SECRET=%s\n", base64.RawURLEncoding.EncodeToString(secret))
			return nil
		},
	}
}
