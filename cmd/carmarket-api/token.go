package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/carmarket/server/middleware"
	"github.com/kbukum/carmarket/validation"
)

// tokenRoles are the role claims a development token may carry.
var tokenRoles = []string{"buyer", "seller", "admin"}

const maxTokenTTL = 24 * time.Hour

func newTokenCmd(load func() (*Config, error)) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token with the configured secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.New().
				Required("subject", subject).
				MaxLength("subject", subject, 128).
				OneOf("role", role, tokenRoles).
				Custom(ttl > 0 && ttl <= maxTokenTTL, "ttl", "Must be between 0s and "+maxTokenTTL.String()).
				Err(); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Server.Auth.Secret == "" {
				return fmt.Errorf("server.auth.secret is not configured")
			}
			token, err := middleware.SignToken(cfg.Server.Auth, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dev-user", "Token subject")
	cmd.Flags().StringVar(&role, "role", "buyer", "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
