package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/feed"
	"github.com/anasaboreeda/anascode/internal/sitemap"
)

// Files written by `anascode build`.
const (
	rssFile      = "rss.xml"
	sitemapFile  = "sitemap.xml"
	articlesFile = "articles.json"
)

// NewBuildCmd creates the `build` command, which writes the generated site
// documents for the published articles.
func NewBuildCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate rss.xml, sitemap.xml and articles.json",
		Long: `Generates the feed, the sitemap and the article index for the published
articles. Drafts are always left out, whatever the configured environment.`,
		Example: `  anascode build --out public`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			logger := commandLogger(cmd, "build")
			now := time.Now()

			articles := newIndex(cmd, cfg, true).Articles()

			rss, err := feed.BuildRSS(cfg.Site, articles, now)
			if err != nil {
				return err
			}
			sm, err := sitemap.Build(cfg.Site.URL, sitemap.DefaultPages(), articles, now)
			if err != nil {
				return err
			}
			var index bytes.Buffer
			if err = printJSON(&index, articles); err != nil {
				return fmt.Errorf("encoding article index: %w", err)
			}

			if err = os.MkdirAll(outDir, 0750); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			outputs := []struct {
				name string
				data []byte
			}{
				{rssFile, []byte(rss)},
				{sitemapFile, sm},
				{articlesFile, index.Bytes()},
			}
			for _, o := range outputs {
				path := filepath.Join(outDir, o.name)
				if err = os.WriteFile(path, o.data, 0600); err != nil {
					return fmt.Errorf("writing %s: %w", o.name, err)
				}
				logger.Debug().Str("path", path).Int("bytes", len(o.data)).Msg("wrote build output")
				cmd.Printf("%s %s\n", render(cmd, successStyle, "✓"), path)
			}

			logger.Info().Int("articles", len(articles)).Str("out", outDir).Msg("build complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "public", "output directory")
	return cmd
}
