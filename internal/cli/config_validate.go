package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Loads the configuration file together with the environment overrides and
checks it for syntax and semantic correctness.`,
		Example: `  # Validate current configuration
  anascode config validate

  # Validate and show the effective settings
  anascode config validate --verbose`,
		Annotations: map[string]string{annotationDefaultsOnFailure: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv := invocationFrom(cmd)
			if inv.loadErr != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("configuration validation failed: %w", inv.loadErr)}
			}

			source := inv.path
			if source == "" {
				source = "built-in defaults"
			}
			cmd.Printf("%s Configuration is valid (%s)\n", render(cmd, successStyle, "✓"), source)

			if verbose {
				cfg := inv.cfg
				cmd.Printf("  Site:        %s\n", cfg.Site.URL)
				cmd.Printf("  Content:     %s (%s)\n", cfg.Content.Directory, cfg.Content.Environment)
				cmd.Printf("  Cache:       %s\n", cfg.Cache.Directory)
				cmd.Printf("  Twitter:     @%s, %d tweets, ttl %ds\n",
					cfg.Social.Twitter.Username, cfg.Social.Twitter.MaxResults, cfg.Social.Twitter.TTLSeconds)
				cmd.Printf("  Token set:   %t\n", cfg.Social.Twitter.BearerToken != "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	return cmd
}

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration with secrets masked.
func NewConfigShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd).Redacted()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON instead of YAML")
	return cmd
}
