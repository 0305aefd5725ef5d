package social

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/anasaboreeda/anascode/internal/cache"
)

// DefaultTTL is how long fetched tweets stay in the cache.
const DefaultTTL = 24 * time.Hour

// Fetcher retrieves the latest tweets of a user. *Client implements it.
type Fetcher interface {
	FetchTweets(ctx context.Context, username string, maxResults int) ([]Tweet, error)
}

// RefreshResult reports what a refresh did.
type RefreshResult struct {
	Key       string
	Tweets    []Tweet
	FromCache bool
}

// Refresher populates the tweet cache. It is the only writer of tweet
// entries; page renderers read them through CachedTweets.
type Refresher struct {
	store   *cache.FileStore
	fetcher Fetcher
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewRefresher creates a refresher. A non-positive ttl selects DefaultTTL.
func NewRefresher(store *cache.FileStore, fetcher Fetcher, ttl time.Duration, logger zerolog.Logger) *Refresher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Refresher{store: store, fetcher: fetcher, ttl: ttl, logger: logger}
}

// Refresh returns the cached tweets if a valid entry exists, otherwise it
// fetches them and stores the result. force skips the cache check. A failed
// fetch leaves any existing entry untouched.
func (r *Refresher) Refresh(ctx context.Context, username string, maxResults int, force bool) (*RefreshResult, error) {
	key := CacheKey(username, maxResults)
	log := r.logger.With().Str("username", username).Str("key", key).Logger()

	if !force {
		if tweets, ok := cache.Get[[]Tweet](r.store, key); ok {
			log.Info().Int("tweets", len(tweets)).Msg("using cached tweets")
			return &RefreshResult{Key: key, Tweets: tweets, FromCache: true}, nil
		}
	}

	log.Info().Msg("cache miss, fetching tweets from API")
	tweets, err := r.fetcher.FetchTweets(ctx, username, maxResults)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch tweets")
		return nil, err
	}

	r.store.Set(key, tweets, r.ttl)
	log.Info().Int("tweets", len(tweets)).Dur("ttl", r.ttl).Msg("cached tweets")
	return &RefreshResult{Key: key, Tweets: tweets}, nil
}
