package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath   = "ANASCODE_CONFIG"
	EnvEnvironment  = "ANASCODE_ENV"
	EnvContentDir   = "ANASCODE_CONTENT_DIR"
	EnvCacheDir     = "ANASCODE_CACHE_DIR"
	EnvLogLevel     = "ANASCODE_LOG_LEVEL"
	EnvLogFormat    = "ANASCODE_LOG_FORMAT"
	EnvSiteURL      = "ANASCODE_SITE_URL"
	EnvTwitterToken = "TWITTER_BEARER_TOKEN"
)

// ResolvePath picks the config file to load. It checks (in order):
//  1. flagValue (--config CLI flag)
//  2. ANASCODE_CONFIG env var
//  3. ./anascode.yaml, if it exists
//
// An empty return means "no file, use defaults".
func ResolvePath(flagValue string, lookupEnv func(string) (string, bool)) string {
	if flagValue != "" {
		return flagValue
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if v, ok := lookupEnv(EnvConfigPath); ok && v != "" {
		return v
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (when non-empty), then environment overrides. The result is validated.
func Load(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := New()

	if path != "" {
		if err := ShallowMergeYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	ApplyEnv(cfg, lookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. Unset or empty variables are ignored.
func ApplyEnv(cfg *Config, lookupEnv func(string) (string, bool)) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	set := func(name string, dst *string) {
		if v, ok := lookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	set(EnvEnvironment, &cfg.Content.Environment)
	set(EnvContentDir, &cfg.Content.Directory)
	set(EnvCacheDir, &cfg.Cache.Directory)
	set(EnvLogLevel, &cfg.Logging.Level)
	set(EnvLogFormat, &cfg.Logging.Format)
	set(EnvSiteURL, &cfg.Site.URL)
	set(EnvTwitterToken, &cfg.Social.Twitter.BearerToken)
}

// Save writes cfg as YAML to path. It refuses to overwrite an existing file unless force is set.
func Save(cfg *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking config file %s: %w", path, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0750); mkErr != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, mkErr)
		}
	}
	if err = os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
