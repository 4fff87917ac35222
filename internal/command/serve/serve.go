package serve

import (
	"github.com/cirruslabs/etagd/internal/app"
	serverpkg "github.com/cirruslabs/etagd/internal/server"
	"github.com/cirruslabs/etagd/internal/server/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultAddr = "127.0.0.1:8080"

var configPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the etagd HTTP server",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "file", "f", "",
		"configuration file path (e.g. /etc/etagd.yml)")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	resolver, closeStore, err := app.NewResolver(cmd.Context(), config, zap.S())
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			zap.S().Warnf("failed to close the store: %v", err)
		}
	}()

	opts := []serverpkg.Option{
		serverpkg.WithLogger(zap.S()),
	}

	if config.Secret != "" {
		tokenManager, err := token.NewManager(config.Secret)
		if err != nil {
			return err
		}

		opts = append(opts, serverpkg.WithTokenManager(tokenManager))
	}

	addr := config.Addr
	if addr == "" {
		addr = defaultAddr
	}

	server, err := serverpkg.New(addr, resolver, opts...)
	if err != nil {
		return err
	}

	return server.Run(cmd.Context())
}
