package url

import (
	"fmt"
	"github.com/cirruslabs/etagd/internal/app"
	"github.com/cirruslabs/etagd/internal/object"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	var configPath string
	var params object.Params

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the public URL of an object",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), object.Normalize(params, config.S3.DefaultBucket).URL())

			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "file", "f", "",
		"configuration file path (e.g. /etc/etagd.yml)")
	cmd.Flags().StringVar(&params.Key, "key", "", "object key")
	cmd.Flags().StringVar(&params.Bucket, "bucket", "", "bucket name (defaults to the configured default bucket)")

	return cmd
}
