package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keySite      = "site"
	keyContent   = "content"
	keyCache     = "cache"
	keySocial    = "social"
	keyLinks     = "links"
	keyLogging   = "logging"
	keyServer    = "server"
	keyLinkCheck = "linkcheck"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keySite:      true,
	keyContent:   true,
	keyCache:     true,
	keySocial:    true,
	keyLinks:     true,
	keyLogging:   true,
	keyServer:    true,
	keyLinkCheck: true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. A key present in the overlay replaces the whole section
// in the target; fields the overlay section leaves out keep their defaults
// from New() rather than the target's value. Keys absent in the overlay are
// left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so it can be unmarshalled onto the
		// strongly-typed target field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes one section into a fresh default value and then
// replaces the target's section with it.
func unmarshalSection(target *Config, key string, data []byte) error {
	defaults := New()
	switch key {
	case keySite:
		v := defaults.Site
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Site = v
	case keyContent:
		v := defaults.Content
		v.Extensions = nil
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		if len(v.Extensions) == 0 {
			v.Extensions = defaults.Content.Extensions
		}
		target.Content = v
	case keyCache:
		v := defaults.Cache
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Cache = v
	case keySocial:
		v := defaults.Social
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Social = v
	case keyLinks:
		var v []LinkGroup
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Links = v
	case keyLogging:
		v := defaults.Logging
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Logging = v
	case keyServer:
		v := defaults.Server
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Server = v
	case keyLinkCheck:
		v := defaults.LinkCheck
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.LinkCheck = v
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
