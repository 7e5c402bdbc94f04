package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/quire/internal/build"
)

func newBuildCmd(a *app) *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the static site from content and layouts",
		Long: `The build command loads every Markdown document under the content
directory, renders it with the layout named in its front-matter, copies
static assets, and writes the site to the output directory (default
'./public/').`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := build.New(a.cfg, a.log).Build(cmd.Context())
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d static files into %s in %s\n",
					len(report.Written), report.Static, a.cfg.OutputDir, report.Duration.Round(time.Millisecond))
				if report.Failed > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d documents failed\n", report.Failed)
				}
			}
			return err
		},
	}

	addSiteFlags(buildCmd)
	return buildCmd
}

// addSiteFlags registers the flags that override site configuration.
func addSiteFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("output", "o", "", "output directory")
	f.StringP("content", "c", "", "content directory")
	f.StringP("layouts", "l", "", "layouts directory")
	f.String("base-url", "", "base URL used by absURL")
	f.BoolP("drafts", "D", false, "include documents marked draft")
	f.IntP("workers", "w", 0, "number of documents rendered in parallel")
	f.Bool("continue-on-error", false, "skip failing documents and report all errors at the end")
}
