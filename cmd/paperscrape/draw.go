package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/paperscrape/internal/app"
	"github.com/hyperifyio/paperscrape/internal/canvas"
)

func newDrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw a circle on a web canvas with a real browser and print the result",
		Long: `Draw opens the page in Chrome, drags the mouse once around a circle centred
on the drawing canvas, presses the calculate button and prints the page's
result text. Chrome or Chromium must be installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				res, err := a.Draw(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("url", canvas.DefaultURL, "Page holding the drawing canvas")
	f.Int("points", canvas.DefaultPoints, "Points sampled along the circle")
	f.Bool("headless", false, "Run the browser without a window")
	return cmd
}
