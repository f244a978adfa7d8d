package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/paperscrape/internal/app"
	"github.com/hyperifyio/paperscrape/internal/extract"
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [source]",
		Short: "Extract paper records from a listing page or saved HTML file",
		Long: `Scrape reads a listing document, extracts one record per paper and writes
every --out file, picking the format from the extension (.csv, .json, .yaml,
.md, .html, .pdf).

The source is an http(s) URL or a local file. Without one, the CVF listing
for --conference is fetched.`,
		Example: `  paperscrape scrape
  paperscrape scrape --conference ICCV2023 --out iccv.csv --arxiv
  paperscrape scrape cvpr_2024.html --out cvpr2024_papers_local.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(c *app.Config) {
				if len(args) == 1 {
					c.Source = args[0]
				}
			}, func(ctx context.Context, a *app.App) error {
				report, err := a.Scrape(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d papers into %s\n", len(report.Records), strings.Join(report.Outputs, ", "))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("conference", app.DefaultConference, "CVF conference to fetch when no source is given")
	f.String("layout", app.DefaultLayout, "Listing layout ("+strings.Join(extract.Names(), ", ")+")")
	f.String("base-url", "", "Override the base URL used to resolve relative links")
	f.StringSlice("out", app.DefaultOutputs, "Output files; repeat or comma-separate")
	f.Bool("arxiv", false, "Add the arxiv_link column")
	f.Bool("robots", false, "Honor robots.txt for remote sources")
	f.String("manifest", "", "Write a JSON run manifest to this path")
	return cmd
}
