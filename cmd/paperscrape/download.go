package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/paperscrape/internal/app"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [urls-file]",
		Short: "Download every unique image URL listed in a file",
		Long: `Download reads one URL per line (blank lines and # comments are skipped),
drops duplicates and saves each image as <md5 prefix><extension> in --dir.
A failed URL is reported and the batch continues.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(c *app.Config) {
				if len(args) == 1 {
					c.URLsFile = args[0]
				}
			}, func(ctx context.Context, a *app.App) error {
				sum, err := a.Download(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully downloaded %d out of %d images\n", sum.Succeeded, sum.Total)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("dir", app.DefaultImageDir, "Directory to save images into")
	f.Int("concurrency", app.DefaultConcurrency, "Parallel downloads")
	f.Float64("rate", 0, "Maximum requests per second; 0 disables pacing")
	f.Duration("timeout", 10*time.Second, "Per-image timeout")
	return cmd
}
