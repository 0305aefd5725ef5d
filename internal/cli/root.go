package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/logging"
)

// annotationDefaultsOnFailure marks commands that fall back to the default
// configuration when the config file cannot be loaded.
const annotationDefaultsOnFailure = "anascode/defaults-on-failure"

type invocationKey struct{}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the anascode CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit environment
// lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		configPath string
		logResult  *logging.Result
	)

	cmd := &cobra.Command{
		Use:           "anascode",
		Short:         "Content, cache and publishing toolkit for anascode.com",
		Long:          "anascode manages the site's MDX articles, the offline tweet cache, generated feeds and imports from Medium.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := loadConfig(cmd, configPath, lookupEnv)
			if err != nil {
				return err
			}
			result := setupLogging(cmd, inv.cfg)
			logResult = &result
			cmd.SetContext(context.WithValue(cmd.Context(), invocationKey{}, inv))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file (default ./anascode.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newArticlesCmd(),
		newCacheCmd(),
		newTweetsCmd(),
		NewBuildCmd(),
		newImportCmd(),
		NewCheckLinksCmd(),
		NewServeCmd(),
		newConfigCmd(),
		NewVersionCmd(ver),
	)
	return cmd
}

const rootCmdExample = `  # List the articles the site would publish
  anascode articles list --production

  # Refresh the cached tweets (only when expired)
  anascode tweets refresh

  # Generate rss.xml, sitemap.xml and articles.json
  anascode build --out public

  # Import a Medium export
  anascode import medium-export ~/Downloads/medium-export/posts

  # Check every link on a running site
  anascode check-links http://localhost:3000`

// invocation is what the root command resolved before running a subcommand.
type invocation struct {
	cfg  *config.Config
	path string

	// loadErr is set when a command annotated with annotationDefaultsOnFailure
	// runs on defaults because the file could not be loaded.
	loadErr error
}

func loadConfig(cmd *cobra.Command, flagPath string, lookupEnv func(string) (string, bool)) (*invocation, error) {
	path := config.ResolvePath(flagPath, lookupEnv)
	cfg, err := config.Load(path, lookupEnv)
	if err == nil {
		return &invocation{cfg: cfg, path: path}, nil
	}
	if cmd.Annotations[annotationDefaultsOnFailure] == "" {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg = config.New()
	config.ApplyEnv(cfg, lookupEnv)
	return &invocation{cfg: cfg, path: path, loadErr: err}, nil
}

func invocationFrom(cmd *cobra.Command) *invocation {
	if inv, ok := cmd.Context().Value(invocationKey{}).(*invocation); ok {
		return inv
	}
	return &invocation{cfg: config.New()}
}

// configFrom returns the configuration loaded by the root command.
func configFrom(cmd *cobra.Command) *config.Config {
	return invocationFrom(cmd).cfg
}

// ExitError carries a specific process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code: 0 for nil, the carried code for
// an *ExitError anywhere in the chain, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

func newArticlesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "articles", Short: "Inspect the article index"}
	cmd.AddCommand(NewArticlesListCmd(), NewArticlesShowCmd(), NewArticlesBrowseCmd())
	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Manage the file cache"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd(), NewCachePruneCmd(), NewCacheGetCmd(), NewCacheSetCmd())
	return cmd
}

func newTweetsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tweets", Short: "Refresh and show the cached tweets"}
	cmd.AddCommand(NewTweetsRefreshCmd(), NewTweetsShowCmd())
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "import", Short: "Import articles from Medium"}
	cmd.AddCommand(NewImportMediumExportCmd(), NewImportMediumFeedCmd())
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
