package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openmusicplayer/videoinfo/internal/auth"
	"github.com/openmusicplayer/videoinfo/internal/config"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [subject]",
		Short: "Mint a bearer token for POST /api/get_video_info",
		Long: `Mint an HS256 bearer token signed with auth.jwt_secret.
Only useful when auth is enabled. The subject defaults to "frontend".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.AuthEnabled() {
				return errors.New("auth is disabled; set VIDEOINFO_AUTH_JWT_SECRET")
			}

			svc, err := auth.NewService(cfg.JWTSecret)
			if err != nil {
				return err
			}

			subject := "frontend"
			if len(args) == 1 {
				subject = args[0]
			}

			token, err := svc.IssueToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenExpiry, "token lifetime")
	return cmd
}
