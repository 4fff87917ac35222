package resolve

import (
	"context"
	"fmt"
	"github.com/cirruslabs/etagd/internal/app"
	"github.com/cirruslabs/etagd/internal/client"
	"github.com/cirruslabs/etagd/internal/etag"
	"github.com/cirruslabs/etagd/internal/object"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"io"
	"time"
)

type options struct {
	configPath string
	key        string
	bucket     string
	server     string
	token      string
}

func NewCommand() *cobra.Command {
	return newCommand("resolve", "Print the ETag of an object, preferring the stored value", false)
}

func NewRefreshCommand() *cobra.Command {
	return newCommand("refresh", "Re-check the ETag of an object against S3 and store it", true)
}

func newCommand(use string, short string, refresh bool) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := object.Params{
				Key:    opts.key,
				Bucket: opts.bucket,
			}

			var info etag.Info
			var err error

			if opts.server != "" {
				info, err = remoteResolve(cmd.Context(), &opts, params, refresh)
			} else {
				info, err = localResolve(cmd.Context(), &opts, params, refresh)
			}
			if err != nil {
				return err
			}

			return printInfo(cmd.OutOrStdout(), params, info)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "file", "f", "",
		"configuration file path (e.g. /etc/etagd.yml)")
	cmd.Flags().StringVar(&opts.key, "key", "", "object key")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "bucket name (defaults to the configured default bucket)")
	cmd.Flags().StringVar(&opts.server, "server", "",
		"query a running etagd server at the given address instead of S3 directly")
	cmd.Flags().StringVar(&opts.token, "token", "", "token to authenticate to the etagd server with")

	return cmd
}

func localResolve(ctx context.Context, opts *options, params object.Params, refresh bool) (etag.Info, error) {
	config, err := app.LoadConfig(opts.configPath)
	if err != nil {
		return etag.Info{}, err
	}

	resolver, closeStore, err := app.NewResolver(ctx, config, zap.S())
	if err != nil {
		return etag.Info{}, err
	}
	defer func() {
		_ = closeStore()
	}()

	if refresh {
		return resolver.Fetch(ctx, params), nil
	}

	return resolver.Resolve(ctx, params), nil
}

func remoteResolve(ctx context.Context, opts *options, params object.Params, refresh bool) (etag.Info, error) {
	etagdClient := client.New(opts.server, opts.token)

	if refresh {
		return etagdClient.Refresh(ctx, params)
	}

	return etagdClient.Resolve(ctx, params)
}

func printInfo(w io.Writer, params object.Params, info etag.Info) error {
	if !info.Found() {
		return fmt.Errorf("no ETag found for key %q", params.Key)
	}

	_, err := fmt.Fprintf(w, "%s\t%s (%s)\n", info.ETag, info.ConfirmedAt.Format(time.RFC3339),
		humanize.Time(info.ConfirmedAt))

	return err
}
