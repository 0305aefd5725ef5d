// Package config loads the anascode configuration: site identity, content and
// cache locations, the social feed refresh settings, and the ambient logging
// and server settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Environment names accepted in ContentConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults.
const (
	DefaultConfigFile      = "anascode.yaml"
	DefaultContentDir      = "content/articles"
	DefaultCacheDir        = ".cache"
	DefaultSiteURL         = "https://www.anascode.com"
	DefaultTwitterUser     = "AnasAboreeda"
	DefaultTweetCount      = 5
	DefaultTweetTTLSeconds = 24 * 60 * 60
	DefaultTwitterAPIBase  = "https://api.twitter.com/2"
	DefaultServerAddr      = ":8080"
	DefaultLinkCheckBase   = "http://localhost:3000"
	DefaultLinkCheckLimit  = 8
	DefaultUserAgent       = "Mozilla/5.0 (compatible; LinkChecker/1.0)"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration document.
type Config struct {
	Site      SiteConfig      `yaml:"site" json:"site"`
	Content   ContentConfig   `yaml:"content" json:"content"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Social    SocialConfig    `yaml:"social" json:"social"`
	Links     []LinkGroup     `yaml:"links" json:"links"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	LinkCheck LinkCheckConfig `yaml:"linkcheck" json:"linkcheck"`
}

// SiteConfig is the public identity of the site used in feeds, sitemaps and JSON-LD.
type SiteConfig struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Language    string `yaml:"language" json:"language"`
	Author      Author `yaml:"author" json:"author"`
}

// Author identifies the site owner.
type Author struct {
	Name     string `yaml:"name" json:"name"`
	Email    string `yaml:"email,omitempty" json:"email,omitempty"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
}

// ContentConfig locates article sources.
type ContentConfig struct {
	// Directory holds <slug>.<ext> files and <slug>/index.<ext> directories.
	Directory string `yaml:"directory" json:"directory"`

	// Extensions are the accepted source extensions, in resolution order.
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Environment is "development" or "production"; production hides unpublished articles.
	Environment string `yaml:"environment" json:"environment"`
}

// IsProduction reports whether unpublished articles should be hidden.
func (c ContentConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// CacheConfig locates the TTL file cache.
type CacheConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// SocialConfig holds the external social feeds shown on the site.
type SocialConfig struct {
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`
}

// TwitterConfig drives the offline tweet refresh and the read-only widget.
type TwitterConfig struct {
	Username   string `yaml:"username" json:"username"`
	MaxResults int    `yaml:"max_results" json:"max_results"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	APIBase    string `yaml:"api_base" json:"api_base"`

	// BearerToken is normally supplied through TWITTER_BEARER_TOKEN rather than the file.
	BearerToken string `yaml:"bearer_token,omitempty" json:"bearer_token,omitempty"`

	// RequestDelay spaces the user lookup and the timeline request.
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`

	RetryMax int `yaml:"retry_max" json:"retry_max"`
}

// TTL returns the configured cache lifetime of fetched tweets.
func (t TwitterConfig) TTL() time.Duration {
	return time.Duration(t.TTLSeconds) * time.Second
}

// LinkGroup is one titled group on the links page.
type LinkGroup struct {
	Title string `yaml:"title" json:"title"`
	Links []Link `yaml:"links" json:"links"`
}

// Link is a single outbound link.
type Link struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
	Note  string `yaml:"note,omitempty" json:"note,omitempty"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// ServerConfig controls the read-only preview API.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// LinkCheckConfig controls the crawler behind `anascode check-links`.
type LinkCheckConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
	MaxPages    int           `yaml:"max_pages" json:"max_pages"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Site: SiteConfig{
			Title: "Anas Aboreeda",
			Description: "Software Engineering Manager & Architect building AI-powered systems, " +
				"leading engineering teams, and architecting scalable solutions.",
			URL:      DefaultSiteURL,
			Language: "en",
			Author: Author{
				Name:     "Anas Aboreeda",
				Email:    "info@anascode.com",
				Location: "Amsterdam, The Netherlands",
			},
		},
		Content: ContentConfig{
			Directory:   DefaultContentDir,
			Extensions:  []string{".mdx"},
			Environment: EnvDevelopment,
		},
		Cache: CacheConfig{Directory: DefaultCacheDir},
		Social: SocialConfig{
			Twitter: TwitterConfig{
				Username:     DefaultTwitterUser,
				MaxResults:   DefaultTweetCount,
				TTLSeconds:   DefaultTweetTTLSeconds,
				APIBase:      DefaultTwitterAPIBase,
				RequestDelay: 2 * time.Second,
				RetryMax:     2,
			},
		},
		Links: DefaultLinks(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		LinkCheck: LinkCheckConfig{
			BaseURL:     DefaultLinkCheckBase,
			Concurrency: DefaultLinkCheckLimit,
			Timeout:     15 * time.Second,
			UserAgent:   DefaultUserAgent,
			MaxPages:    500,
		},
	}
}

// DefaultLinks returns the link groups shown on the links page.
func DefaultLinks() []LinkGroup {
	return []LinkGroup{
		{
			Title: "Writing",
			Links: []Link{
				{Title: "Medium", URL: "https://medium.com/@anas-aboreeda",
					Note: "Technical deep dives on software architecture and cloud"},
				{Title: "AWS Tip", URL: "https://awstip.com/@anas-aboreeda",
					Note: "AWS certification study notes and cloud patterns"},
				{Title: "Nerd For Tech", URL: "https://medium.com/nerd-for-tech",
					Note: "Contributing editor for software engineering topics"},
			},
		},
		{
			Title: "Code",
			Links: []Link{
				{Title: "GitHub", URL: "https://github.com/anasaboreeda", Note: "Open source projects and experiments"},
			},
		},
		{
			Title: "Connect",
			Links: []Link{
				{Title: "LinkedIn", URL: "https://linkedin.com/in/anasaboreeda",
					Note: "Professional network and career updates"},
				{Title: "Email", URL: "mailto:info@anascode.com", Note: "Direct contact"},
			},
		},
	}
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return fmt.Errorf("%w: site.title is required", ErrInvalidConfig)
	}
	if err := validateAbsoluteURL("site.url", c.Site.URL); err != nil {
		return err
	}
	if c.Content.Directory == "" {
		return fmt.Errorf("%w: content.directory is required", ErrInvalidConfig)
	}
	if len(c.Content.Extensions) == 0 {
		return fmt.Errorf("%w: content.extensions must not be empty", ErrInvalidConfig)
	}
	for _, ext := range c.Content.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: content.extensions entry %q must look like \".mdx\"", ErrInvalidConfig, ext)
		}
	}
	switch strings.ToLower(c.Content.Environment) {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("%w: content.environment must be %q or %q, got %q",
			ErrInvalidConfig, EnvDevelopment, EnvProduction, c.Content.Environment)
	}
	if c.Cache.Directory == "" {
		return fmt.Errorf("%w: cache.directory is required", ErrInvalidConfig)
	}
	if c.Social.Twitter.MaxResults < 1 {
		return fmt.Errorf("%w: social.twitter.max_results must be >= 1", ErrInvalidConfig)
	}
	if c.Social.Twitter.TTLSeconds < 1 {
		return fmt.Errorf("%w: social.twitter.ttl_seconds must be >= 1", ErrInvalidConfig)
	}
	if c.LinkCheck.Concurrency < 1 {
		return fmt.Errorf("%w: linkcheck.concurrency must be >= 1", ErrInvalidConfig)
	}
	return nil
}

// Redacted returns a copy of c that is safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Social.Twitter.BearerToken != "" {
		cp.Social.Twitter.BearerToken = "********"
	}
	return &cp
}

func validateAbsoluteURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute URL, got %q", ErrInvalidConfig, field, raw)
	}
	return nil
}
