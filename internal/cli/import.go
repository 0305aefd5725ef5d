package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/importer"
)

// importSummary counts the outcomes of one import run.
type importSummary struct {
	written     int
	overwritten int
	skipped     int
	failed      int
}

func (s importSummary) print(cmd *cobra.Command) {
	cmd.Printf("\n%s written, %d overwritten, %d skipped, %d failed\n",
		render(cmd, headingStyle, fmt.Sprintf("%d", s.written)), s.overwritten, s.skipped, s.failed)
}

// writeArticles stores articles in the configured content directory and
// prints one line per article.
func writeArticles(cmd *cobra.Command, articles []*importer.Article, force bool) importSummary {
	cfg := configFrom(cmd)
	w := importer.NewWriter(cfg.Content.Directory, force, commandLogger(cmd, "importer"))
	out := cmd.OutOrStdout()

	var sum importSummary
	for _, a := range articles {
		path, status, err := w.Write(a)
		if err != nil {
			sum.failed++
			fmt.Fprintf(out, "%s %s: %v\n", render(cmd, failureStyle, "✗"), a.Slug, err)
			continue
		}
		switch status {
		case importer.StatusWritten:
			sum.written++
		case importer.StatusOverwritten:
			sum.overwritten++
		case importer.StatusSkipped:
			sum.skipped++
		}
		fmt.Fprintf(out, "%s %-11s %s\n", render(cmd, successStyle, "✓"), status, path)
		printImages(out, a)
	}
	return sum
}

func printImages(out io.Writer, a *importer.Article) {
	for _, img := range a.Images {
		fmt.Fprintf(out, "    image: %s\n", img)
	}
}

// NewImportMediumExportCmd creates the `import medium-export` command.
func NewImportMediumExportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "medium-export <posts-dir>",
		Short: "Convert the posts of a Medium data export to MDX articles",
		Long: `Converts every post HTML file of a Medium export (the posts/ directory of
the downloaded archive) into <content>/<slug>/index.mdx. Posts without a
publication date, such as comments, are skipped. Existing articles are kept
unless --force is given. Images keep their remote URLs and are listed so they
can be downloaded separately.`,
		Example: `  anascode import medium-export ~/Downloads/medium-export/posts`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := importer.ParseExportDir(args[0], commandLogger(cmd, "importer"))
			if err != nil {
				return err
			}

			sum := writeArticles(cmd, result.Articles, force)

			names := make([]string, 0, len(result.Skipped))
			for name := range result.Skipped {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				cmd.Printf("%s %-11s %s (%v)\n", render(cmd, mutedStyle, "-"), "ignored", name, result.Skipped[name])
			}

			sum.print(cmd)
			if sum.failed > 0 {
				return &ExitError{Code: 1, Err: fmt.Errorf("%d article(s) could not be written", sum.failed)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing articles")
	return cmd
}

// NewImportMediumFeedCmd creates the `import medium-feed` command.
func NewImportMediumFeedCmd() *cobra.Command {
	var (
		force    bool
		fullText bool
	)

	cmd := &cobra.Command{
		Use:   "medium-feed <feed-url-or-file>",
		Short: "Import articles from a Medium RSS feed",
		Long: `Imports the items of a Medium RSS feed, given as a URL or a local file. Feed
items that only carry a teaser can be completed with --full-text, which
fetches each article page and extracts the readable content.`,
		Example: `  # From the live feed
  anascode import medium-feed https://medium.com/feed/@anas-aboreeda

  # From a saved copy, fetching each article for the full body
  anascode import medium-feed feed.xml --full-text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fi := importer.NewFeedImporter(
				importer.WithFullText(fullText),
				importer.WithFeedLogger(commandLogger(cmd, "importer")),
			)
			articles, err := fi.Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sum := writeArticles(cmd, articles, force)
			sum.print(cmd)
			if sum.failed > 0 {
				return &ExitError{Code: 1, Err: fmt.Errorf("%d article(s) could not be written", sum.failed)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing articles")
	cmd.Flags().BoolVar(&fullText, "full-text", false, "fetch each article page for the full body")
	return cmd
}
