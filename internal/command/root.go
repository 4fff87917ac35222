package command

import (
	"github.com/cirruslabs/etagd/internal/command/resolve"
	"github.com/cirruslabs/etagd/internal/command/serve"
	"github.com/cirruslabs/etagd/internal/command/token"
	"github.com/cirruslabs/etagd/internal/command/url"
	"github.com/cirruslabs/etagd/internal/logginglevel"
	"github.com/cirruslabs/etagd/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func NewRootCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "etagd",
		Short:         "Cache-aside ETag resolver for S3 objects",
		Version:       version.FullVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if debug {
				logginglevel.Level.SetLevel(zapcore.DebugLevel)
			}

			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		serve.NewCommand(),
		resolve.NewCommand(),
		resolve.NewRefreshCommand(),
		url.NewCommand(),
		token.NewCommand(),
	)

	return cmd
}
