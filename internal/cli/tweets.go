package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/social"
)

const (
	tweetRetryWaitMin = time.Second
	tweetRetryWaitMax = 30 * time.Second
)

// NewTweetsRefreshCmd creates the `tweets refresh` command, the offline job
// that populates the tweet cache the site reads from.
func NewTweetsRefreshCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the latest tweets into the cache",
		Long: `Fetches the latest tweets of the configured account and stores them in the
file cache. A valid cache entry is reused unless --force is given. The bearer
token is read from TWITTER_BEARER_TOKEN.`,
		Example: `  # Refresh only when the cached tweets have expired
  TWITTER_BEARER_TOKEN=... anascode tweets refresh

  # Always call the API
  TWITTER_BEARER_TOKEN=... anascode tweets refresh --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			tw := cfg.Social.Twitter
			logger := commandLogger(cmd, "social")

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			client, err := social.NewClient(tw.BearerToken,
				social.WithBaseURL(tw.APIBase),
				social.WithRequestDelay(tw.RequestDelay),
				social.WithRetry(tw.RetryMax, tweetRetryWaitMin, tweetRetryWaitMax),
				social.WithClientLogger(logger),
			)
			if err != nil {
				if errors.Is(err, social.ErrMissingToken) {
					return fmt.Errorf("%w: set %s", err, config.EnvTwitterToken)
				}
				return err
			}

			result, err := social.NewRefresher(store, client, tw.TTL(), logger).
				Refresh(cmd.Context(), tw.Username, tw.MaxResults, force)
			if err != nil {
				var apiErr *social.APIError
				if errors.As(err, &apiErr) {
					if hint := apiErr.Hint(time.Now()); hint != "" {
						cmd.PrintErrf("Hint: %s\n", hint)
					}
				}
				return fmt.Errorf("refreshing tweets: %w", err)
			}

			source := "fetched from API"
			if result.FromCache {
				source = "cache still valid"
			}
			cmd.Printf("%s %d tweet(s) for @%s (%s)\n",
				render(cmd, successStyle, "✓"), len(result.Tweets), tw.Username, source)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "ignore a valid cache entry and call the API")
	return cmd
}

// NewTweetsShowCmd creates the `tweets show` command. It only reads the cache.
func NewTweetsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cached tweets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := configFrom(cmd).Social.Twitter
			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			tweets := social.CachedTweets(store, tw.Username, tw.MaxResults)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tweets)
			}
			if len(tweets) == 0 {
				cmd.Println("No cached tweets. Run `anascode tweets refresh` first.")
				return nil
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			for _, t := range tweets {
				fmt.Fprintf(out, "%s  %s\n",
					render(cmd, headingStyle, "@"+t.Author.Username),
					render(cmd, mutedStyle, social.RelativeTime(t.CreatedAt, now)))
				fmt.Fprintf(out, "%s\n", social.FormatText(t))
				if m := t.PublicMetrics; m != nil {
					fmt.Fprintf(out, "%s\n", render(cmd, mutedStyle,
						fmt.Sprintf("♥ %d  ↻ %d  💬 %d", m.LikeCount, m.RetweetCount, m.ReplyCount)))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tweets as JSON")
	return cmd
}
