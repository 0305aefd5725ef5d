package cli

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/linkcheck"
)

const (
	linkRetryWaitMin = 500 * time.Millisecond
	linkRetryWaitMax = 5 * time.Second
	progressEvery    = 25
)

// NewCheckLinksCmd creates the `check-links` command. It exits with status 1
// when any link is broken.
func NewCheckLinksCmd() *cobra.Command {
	var (
		concurrency int
		maxPages    int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "check-links [base-url]",
		Short: "Crawl the site and report broken links",
		Long: `Crawls every internal page reachable from the base URL and checks each
linked URL, internal or external. mailto:, tel: and fragment-only links are
skipped. The command exits with status 1 when any link is broken.`,
		Example: `  # Against the local dev server
  anascode check-links

  # Against production
  anascode check-links https://www.anascode.com --concurrency 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd).LinkCheck
			base := cfg.BaseURL
			if len(args) == 1 {
				base = args[0]
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.Concurrency
			}
			if !cmd.Flags().Changed("max-pages") && cfg.MaxPages > 0 {
				maxPages = cfg.MaxPages
			}

			var checked atomic.Int64
			checker, err := linkcheck.New(base,
				linkcheck.WithConcurrency(concurrency),
				linkcheck.WithMaxPages(maxPages),
				linkcheck.WithTimeout(cfg.Timeout),
				linkcheck.WithUserAgent(cfg.UserAgent),
				linkcheck.WithRetry(linkcheck.DefaultRetryMax, linkRetryWaitMin, linkRetryWaitMax),
				linkcheck.WithLogger(commandLogger(cmd, "linkcheck")),
				linkcheck.WithProgress(func(r linkcheck.Result) {
					if n := checked.Add(1); !asJSON && n%progressEvery == 0 {
						cmd.PrintErrf("checked %d links...\n", n)
					}
				}),
			)
			if err != nil {
				return err
			}

			if !asJSON {
				cmd.Printf("Checking links on %s\n", checker.BaseURL())
			}
			report, err := checker.Run(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				if err = printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printLinkReport(cmd, report)
			}

			if len(report.Failed) > 0 {
				return &ExitError{Code: 1, Err: fmt.Errorf("%d broken link(s)", len(report.Failed))}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", linkcheck.DefaultConcurrency, "maximum parallel requests")
	cmd.Flags().IntVar(&maxPages, "max-pages", linkcheck.DefaultMaxPages, "maximum internal pages to crawl")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printLinkReport(cmd *cobra.Command, report *linkcheck.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s\n", render(cmd, headingStyle, "Link Check Summary"))
	fmt.Fprintf(out, "  Pages crawled:  %d\n", report.PagesCrawled)
	fmt.Fprintf(out, "  Links checked:  %d\n", report.Total())
	fmt.Fprintf(out, "  %s %d\n", render(cmd, successStyle, "Successful:    "), len(report.Success))
	fmt.Fprintf(out, "  %s %d\n", render(cmd, failureStyle, "Broken:        "), len(report.Failed))
	fmt.Fprintf(out, "  Skipped:        %d\n", len(report.Skipped))

	if len(report.Failed) == 0 {
		fmt.Fprintf(out, "\n%s All links are working\n", render(cmd, successStyle, "✓"))
		return
	}

	fmt.Fprintf(out, "\n%s\n", render(cmd, failureStyle, "Broken links:"))
	for _, r := range report.Failed {
		status := r.StatusText
		if r.Status > 0 {
			status = fmt.Sprintf("%d %s", r.Status, r.StatusText)
		}
		fmt.Fprintf(out, "\n  %s\n    Status: %s\n", r.URL, status)
		for _, page := range r.FoundOn {
			fmt.Fprintf(out, "    Found on: %s\n", page)
		}
	}
}
