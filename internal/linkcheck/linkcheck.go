// Package linkcheck crawls a running site from its base URL and verifies
// every link it finds. Internal pages are crawled recursively; external
// links are only checked.
package linkcheck

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/anasaboreeda/anascode/internal/logging"
)

// Defaults.
const (
	DefaultConcurrency = 8
	DefaultUserAgent   = "Mozilla/5.0 (compatible; LinkChecker/1.0)"
	DefaultMaxPages    = 500
	DefaultTimeout     = 15 * time.Second
	DefaultRetryMax    = 1
)

// ErrInvalidBaseURL is returned by New for a base that is not an absolute
// http(s) URL.
var ErrInvalidBaseURL = errors.New("base URL must be an absolute http(s) URL")

// skipPrefixes are hrefs that are never checked.
var skipPrefixes = []string{"mailto:", "tel:", "#"}

// Result is the outcome of checking one link.
type Result struct {
	URL        string `json:"url"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`

	// FoundOn lists the pages linking here, in discovery order.
	FoundOn []string `json:"foundOn"`
}

// OK reports whether the link answered with a 2xx or 3xx status.
func (r Result) OK() bool {
	return r.Status >= 200 && r.Status < 400
}

// Report groups checked links by outcome.
type Report struct {
	Success []Result `json:"success"`
	Failed  []Result `json:"failed"`
	Skipped []string `json:"skipped"`

	PagesCrawled int `json:"pagesCrawled"`
}

// Total is the number of distinct links checked.
func (r *Report) Total() int {
	return len(r.Success) + len(r.Failed)
}

// Option configures a Checker.
type Option func(*Checker)

// WithConcurrency bounds the number of requests in flight.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Checker) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxPages caps the number of internal pages crawled.
func WithMaxPages(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.http.HTTPClient.Timeout = d
		}
	}
}

// WithRetry sets how often failed requests are retried and the backoff bounds.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Checker) {
		c.http.RetryMax = retryMax
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithProgress registers fn to be called once for every checked link.
// Calls are serialized.
func WithProgress(fn func(Result)) Option {
	return func(c *Checker) {
		c.progress = fn
	}
}

// WithLogger sets the checker's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Checker) {
		c.logger = l
		c.http.Logger = logging.RetryableHTTPLogger(l)
	}
}

// Checker crawls one site.
type Checker struct {
	base        *url.URL
	http        *retryablehttp.Client
	concurrency int
	userAgent   string
	maxPages    int
	progress    func(Result)
	logger      zerolog.Logger
}

// New creates a checker rooted at baseURL.
func New(baseURL string, opts ...Option) (*Checker, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	base.Fragment = ""

	rc := retryablehttp.NewClient()
	rc.RetryMax = DefaultRetryMax
	rc.HTTPClient.Timeout = DefaultTimeout
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = logging.RetryableHTTPLogger(zerolog.Nop())

	c := &Checker{
		base:        base,
		http:        rc,
		concurrency: DefaultConcurrency,
		userAgent:   DefaultUserAgent,
		maxPages:    DefaultMaxPages,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized crawl root.
func (c *Checker) BaseURL() string {
	return c.base.String()
}

// skippable reports whether href is one of the link kinds never checked.
func skippable(href string) bool {
	for _, p := range skipPrefixes {
		if strings.HasPrefix(href, p) {
			return true
		}
	}
	return false
}

// resolve turns href into an absolute URL relative to page, without its
// fragment. ok is false for unparsable links and non-http schemes.
func resolve(page *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	abs := page.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// internal reports whether link belongs to the crawled site.
func (c *Checker) internal(link string) bool {
	return strings.HasPrefix(link, c.base.String())
}

// crawlable reports whether an internal link looks like an HTML page rather
// than an asset such as /rss.xml or /logo.png.
func crawlable(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return true
	}
	last := u.Path[strings.LastIndexByte(u.Path, '/')+1:]
	return !strings.Contains(last, ".")
}
