package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/cli/pagination"
	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/seo"
	"github.com/anasaboreeda/anascode/internal/tui"
)

// ErrArticleNotFound is returned by `articles show` for an unknown or hidden slug.
var ErrArticleNotFound = errors.New("article not found")

// newIndex opens the content index described by cfg. production overrides
// the configured environment when true.
func newIndex(cmd *cobra.Command, cfg *config.Config, production bool) *content.Index {
	return content.NewIndex(cfg.Content.Directory,
		content.WithExtensions(cfg.Content.Extensions...),
		content.WithProduction(production || cfg.Content.IsProduction()),
		content.WithLogger(commandLogger(cmd, "content")),
	)
}

// NewArticlesListCmd creates the `articles list` command.
func NewArticlesListCmd() *cobra.Command {
	var (
		production bool
		asJSON     bool
		page       pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Example: `  # Everything in the content directory, drafts included
  anascode articles list

  # Only what a production build would publish, as JSON
  anascode articles list --production --json

  # Second page of ten, alphabetically
  anascode articles list --sort title --page 2 --page-size 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := page.Validate(); err != nil {
				return err
			}
			articles, err := sortArticles(newIndex(cmd, configFrom(cmd), production).Articles(), page.Sort)
			if err != nil {
				return err
			}
			total := len(articles)
			articles = pagination.Apply(page, articles)

			if asJSON {
				if page.IsEnabled() {
					return printJSON(cmd.OutOrStdout(), pagedArticles{
						Articles:   articles,
						Pagination: pagination.NewMeta(page, total),
					})
				}
				return printJSON(cmd.OutOrStdout(), articles)
			}
			if len(articles) == 0 {
				cmd.Println("No articles found.")
				return nil
			}

			w := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(w, "DATE\tSLUG\tSTATUS\tTITLE")
			for _, a := range articles {
				status := "published"
				if !a.IsPublished() {
					status = "draft"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Date, a.Slug, status, a.Title)
			}
			if err = w.Flush(); err != nil {
				return err
			}
			if page.IsEnabled() {
				meta := pagination.NewMeta(page, total)
				cmd.Println(render(cmd, mutedStyle,
					fmt.Sprintf("page %d of %d (%d articles)", meta.CurrentPage, meta.TotalPages, meta.TotalItems)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&production, "production", false, "hide unpublished articles")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")
	page.AddFlags(cmd, "sort by date, title or slug, optionally with :asc or :desc (default newest first)")
	return cmd
}

// pagedArticles is the JSON shape of a paginated listing.
type pagedArticles struct {
	Articles   []content.Article `json:"articles"`
	Pagination pagination.Meta   `json:"pagination"`
}

// sortArticles applies a --sort value. An empty value keeps the index order,
// newest first.
func sortArticles(articles []content.Article, sortFlag string) ([]content.Article, error) {
	field, order, err := pagination.ParseSort(sortFlag)
	if err != nil || field == "" {
		return articles, err
	}
	return pagination.NewArticleSorter().Sort(articles, field, order)
}

// NewArticlesShowCmd creates the `articles show` command.
func NewArticlesShowCmd() *cobra.Command {
	var (
		production bool
		jsonLD     bool
	)

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one article's frontmatter and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			slug := args[0]
			if err := content.ValidateSlug(slug); err != nil {
				return err
			}

			hideDrafts := production || cfg.Content.IsProduction()
			doc, ok := newIndex(cmd, cfg, production).Document(slug)
			if !ok || (hideDrafts && !doc.Frontmatter.IsPublished()) {
				return fmt.Errorf("%w: %s", ErrArticleNotFound, slug)
			}

			if jsonLD {
				ld, err := seo.ArticleJSONLD(cfg.Site, doc.Article())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(ld))
				return nil
			}

			out := cmd.OutOrStdout()
			if styled(cmd) {
				fmt.Fprintln(out, tui.RenderArticleDetail(doc.Article(), doc, 100))
				return nil
			}
			fmt.Fprintf(out, "Title:   %s\n", doc.Frontmatter.Title)
			fmt.Fprintf(out, "Slug:    %s\n", doc.Slug)
			fmt.Fprintf(out, "Date:    %s\n", doc.Frontmatter.Date)
			fmt.Fprintf(out, "Tags:    %s\n", strings.Join(doc.Frontmatter.Tags, ", "))
			fmt.Fprintf(out, "File:    %s\n", doc.Path)
			fmt.Fprintf(out, "Summary: %s\n\n", doc.Frontmatter.Summary)
			fmt.Fprintln(out, strings.TrimSpace(doc.Content))
			return nil
		},
	}

	cmd.Flags().BoolVar(&production, "production", false, "treat unpublished articles as missing")
	cmd.Flags().BoolVar(&jsonLD, "jsonld", false, "print the article's JSON-LD structured data")
	return cmd
}

// NewArticlesBrowseCmd creates the interactive `articles browse` command.
func NewArticlesBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse articles interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !styled(cmd) {
				return errors.New("articles browse needs an interactive terminal; use articles list instead")
			}
			index := newIndex(cmd, configFrom(cmd), false)
			model := tui.NewArticlesModel(index.Articles(), index.Document)

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running article browser: %w", err)
			}
			return nil
		},
	}
}
