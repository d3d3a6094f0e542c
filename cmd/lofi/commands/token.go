package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/lofi-playground/internal/auth"
)

// newTokenCmd mints a development session token signed with the server's
// shared secret.
func newTokenCmd(a *app) *cobra.Command {
	var (
		user   auth.User
		ttl    time.Duration
		secret string
		issuer string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token",
		Long:  "Mint a session token signed with AUTH_SECRET, for local development against a server you run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = a.v.GetString("auth_secret")
			}
			if issuer == "" {
				issuer = a.v.GetString("auth_issuer")
			}
			if secret == "" {
				return errors.New("a signing secret is required (--secret or AUTH_SECRET)")
			}
			if user.ID == "" {
				return errors.New("--user is required")
			}

			token, err := auth.Mint(secret, issuer, user, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.ID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (default $AUTH_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer claim (default $AUTH_ISSUER)")

	_ = a.v.BindEnv("auth_secret", "AUTH_SECRET")
	_ = a.v.BindEnv("auth_issuer", "AUTH_ISSUER")

	return cmd
}
