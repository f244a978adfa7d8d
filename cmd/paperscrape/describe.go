package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/paperscrape/internal/app"
	"github.com/hyperifyio/paperscrape/internal/llm"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <image>",
		Short: "Describe an image with a vision model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				text, err := a.Describe(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "\nImage Description:")
				fmt.Fprintln(out, "-----------------")
				fmt.Fprintln(out, text)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("model", llm.DefaultVisionModel, "Vision model")
	f.String("prompt", llm.DefaultPrompt, "Instruction sent with the image")
	f.Int("max-tokens", llm.DefaultMaxTokens, "Maximum tokens in the answer")
	return cmd
}
