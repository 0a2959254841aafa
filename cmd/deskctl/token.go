package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/hr-service-desk/internal/middleware"
)

func newTokenCmd(opts *globalOpts) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for --user",
		Long:  "Signs a JWT with JWT_SECRET for calling the HTTP API as --user.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.JWTExpiration
			}

			token, err := middleware.IssueToken(cfg.JWTSecret, opts.userID, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_EXPIRATION)")
	return cmd
}
