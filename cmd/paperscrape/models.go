package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/paperscrape/internal/app"
	"github.com/hyperifyio/paperscrape/internal/llm"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models grouped into vision, GPT-4 and other",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, nil, func(ctx context.Context, a *app.App) error {
				groups, err := a.Models(ctx)
				if err != nil {
					return err
				}
				printModelGroups(cmd.OutOrStdout(), groups)
				return nil
			})
		},
	}
}

func printModelGroups(w io.Writer, g llm.ModelGroups) {
	fmt.Fprintln(w, "\nAvailable Models:")
	fmt.Fprintln(w, "----------------")
	sections := []struct {
		title string
		ids   []string
	}{
		{"Vision Models", g.Vision},
		{"GPT-4 Models", g.GPT4},
		{"All Other Models", g.Other},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "\n%s:\n", s.title)
		for _, id := range s.ids {
			fmt.Fprintf(w, "- %s\n", id)
		}
	}
}
