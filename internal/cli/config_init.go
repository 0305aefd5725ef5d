package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// It writes the defaults to the --config path, ANASCODE_CONFIG, or ./anascode.yaml.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values. The file is written
to the --config path when given, then ANASCODE_CONFIG, then ./anascode.yaml.
The Twitter bearer token is never written; supply it through
TWITTER_BEARER_TOKEN.`,
		Example: `  # Create ./anascode.yaml
  anascode config init

  # Create configuration elsewhere, overwriting an existing file
  anascode --config ~/.config/anascode.yaml config init --force`,
		Annotations: map[string]string{annotationDefaultsOnFailure: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := invocationFrom(cmd).path
			if path == "" {
				path = config.DefaultConfigFile
			}

			cfg := config.New()
			if err := config.Save(cfg, path, force); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Printf("Configuration initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}
