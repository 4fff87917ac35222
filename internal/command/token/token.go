package token

import (
	"fmt"
	"github.com/cirruslabs/etagd/internal/app"
	tokenpkg "github.com/cirruslabs/etagd/internal/server/token"
	"github.com/spf13/cobra"
	"time"
)

func NewCommand() *cobra.Command {
	var configPath string
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a token for the etagd HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if config.Secret == "" {
				return fmt.Errorf("secret needs to be configured to issue tokens")
			}

			tokenManager, err := tokenpkg.NewManager(config.Secret)
			if err != nil {
				return err
			}

			rawToken, err := tokenManager.Issue(subject, ttl)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rawToken)

			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "file", "f", "",
		"configuration file path (e.g. /etc/etagd.yml)")
	cmd.Flags().StringVar(&subject, "subject", "etagd", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (zero means that the token never expires)")

	return cmd
}
