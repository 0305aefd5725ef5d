package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/anasaboreeda/anascode/internal/logging"
)

// DefaultBaseURL is the Twitter API v2 root.
const DefaultBaseURL = "https://api.twitter.com/2"

const (
	defaultRequestDelay = 2 * time.Second
	defaultRetryMax     = 2
	defaultTimeout      = 30 * time.Second
	maxBodyBytes        = 1 << 20

	// The timeline endpoint only accepts max_results in this range.
	minTimelineResults = 5
	maxTimelineResults = 100

	headerRateLimitReset = "x-rate-limit-reset"
)

// Client errors. Failed requests return an *APIError that wraps one of these.
var (
	ErrMissingToken     = errors.New("TWITTER_BEARER_TOKEN is not set")
	ErrRateLimited      = errors.New("twitter API rate limit reached")
	ErrUnauthorized     = errors.New("twitter API authentication failed")
	ErrForbidden        = errors.New("twitter API access forbidden")
	ErrUserNotFound     = errors.New("twitter user not found")
	ErrUnexpectedStatus = errors.New("unexpected twitter API status")
)

// APIError describes a non-200 response from the API.
type APIError struct {
	StatusCode int
	Body       string

	// ResetAt is when the rate limit window reopens; zero if the API did not say.
	ResetAt time.Time

	err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.err, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// Hint is a one-line suggestion for the operator.
func (e *APIError) Hint(now time.Time) string {
	switch {
	case errors.Is(e.err, ErrRateLimited) && !e.ResetAt.IsZero():
		wait := int(e.ResetAt.Sub(now).Minutes() + 1)
		return fmt.Sprintf("rate limit resets at %s, wait approximately %d minutes",
			e.ResetAt.Local().Format(time.Kitchen), max(wait, 1))
	case errors.Is(e.err, ErrRateLimited):
		return "try again in 15 minutes"
	case errors.Is(e.err, ErrUnauthorized):
		return "check the bearer token"
	case errors.Is(e.err, ErrForbidden):
		return "the app may not have the required access level (need at least Free tier)"
	default:
		return ""
	}
}

// User is the account returned by the username lookup.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

type userResponse struct {
	Data *User `json:"data"`
}

type apiTweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     string         `json:"created_at"`
	AuthorID      string         `json:"author_id"`
	PublicMetrics *PublicMetrics `json:"public_metrics"`
	Entities      *Entities      `json:"entities"`
}

type timelineResponse struct {
	Data     []apiTweet `json:"data"`
	Includes struct {
		Users []User `json:"users"`
	} `json:"includes"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithRequestDelay sets the pause between the user lookup and the timeline request.
func WithRequestDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.delay = d
	}
}

// WithRetry sets the retry budget and backoff bounds for transient failures.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) ClientOption {
	return func(c *Client) {
		c.http.RetryMax = retryMax
		if waitMin > 0 {
			c.http.RetryWaitMin = waitMin
		}
		if waitMax > 0 {
			c.http.RetryWaitMax = waitMax
		}
	}
}

// WithClientLogger sets the logger for the client and its HTTP transport.
func WithClientLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
		c.http.Logger = logging.RetryableHTTPLogger(l)
	}
}

// Client talks to the Twitter API v2 with a bearer token.
type Client struct {
	baseURL string
	token   string
	delay   time.Duration
	http    *retryablehttp.Client
	logger  zerolog.Logger
}

// NewClient creates a client. Rate-limit responses are never retried; 5xx
// and connection errors are retried with backoff.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = defaultRetryMax
	rc.HTTPClient.Timeout = defaultTimeout
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = logging.RetryableHTTPLogger(zerolog.Nop())

	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		delay:   defaultRequestDelay,
		http:    rc,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// LookupUser resolves a username to its account.
func (c *Client) LookupUser(ctx context.Context, username string) (*User, error) {
	endpoint := fmt.Sprintf("%s/users/by/username/%s", c.baseURL, url.PathEscape(username))

	var resp userResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return nil, fmt.Errorf("%w: @%s", ErrUserNotFound, username)
	}
	return resp.Data, nil
}

// UserTweets returns up to maxResults original tweets (no retweets or
// replies) posted by user, newest first.
func (c *Client) UserTweets(ctx context.Context, user *User, maxResults int) ([]Tweet, error) {
	params := url.Values{}
	params.Set("max_results", strconv.Itoa(min(max(maxResults, minTimelineResults), maxTimelineResults)))
	params.Set("tweet.fields", "created_at,public_metrics,entities")
	params.Set("user.fields", "username,name,profile_image_url")
	params.Set("expansions", "author_id")
	params.Set("exclude", "retweets,replies")

	endpoint := fmt.Sprintf("%s/users/%s/tweets?%s", c.baseURL, url.PathEscape(user.ID), params.Encode())

	var resp timelineResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	authors := make(map[string]User, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		authors[u.ID] = u
	}

	tweets := make([]Tweet, 0, len(resp.Data))
	for _, t := range resp.Data {
		author := Author{Username: user.Username, Name: user.Name, ProfileImageURL: user.ProfileImageURL}
		if u, ok := authors[t.AuthorID]; ok {
			author = Author{Username: u.Username, Name: u.Name, ProfileImageURL: u.ProfileImageURL}
		}
		tweets = append(tweets, Tweet{
			ID:            t.ID,
			Text:          t.Text,
			CreatedAt:     t.CreatedAt,
			Author:        author,
			PublicMetrics: t.PublicMetrics,
			Entities:      t.Entities,
		})
		if len(tweets) == maxResults {
			break
		}
	}
	return tweets, nil
}

// FetchTweets looks up username and then fetches its latest tweets, pausing
// between the two calls to stay under the free-tier rate limit.
func (c *Client) FetchTweets(ctx context.Context, username string, maxResults int) ([]Tweet, error) {
	user, err := c.LookupUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Username == "" {
		user.Username = username
	}
	if user.Name == "" {
		user.Name = username
	}

	c.logger.Debug().Dur("delay", c.delay).Msg("waiting before timeline request")
	if err = sleepContext(ctx, c.delay); err != nil {
		return nil, err
	}

	return c.UserTweets(ctx, user, maxResults)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", redactQuery(endpoint)).Msg("twitter API request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twitter API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading twitter API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp, body)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", apiErr.Body).
			Msg("twitter API error")
		return apiErr
	}

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding twitter API response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		apiErr.err = ErrRateLimited
		if reset, err := strconv.ParseInt(resp.Header.Get(headerRateLimitReset), 10, 64); err == nil {
			apiErr.ResetAt = time.Unix(reset, 0)
		}
	case http.StatusUnauthorized:
		apiErr.err = ErrUnauthorized
	case http.StatusForbidden:
		apiErr.err = ErrForbidden
	case http.StatusNotFound:
		apiErr.err = ErrUserNotFound
	default:
		apiErr.err = ErrUnexpectedStatus
	}
	return apiErr
}

// redactQuery drops the query string from logged URLs.
func redactQuery(raw string) string {
	before, _, _ := strings.Cut(raw, "?")
	return before
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
