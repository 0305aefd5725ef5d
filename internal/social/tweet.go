// Package social feeds the "recent tweets" widget.
//
// Pages only ever call CachedTweets, which reads the file cache and never
// touches the network. The Client and Refresher are used by the offline
// refresh command to populate that cache.
package social

import (
	"fmt"

	"github.com/anasaboreeda/anascode/internal/cache"
)

// Tweet is the cached, display-ready form of a post.
type Tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     string         `json:"created_at"`
	Author        Author         `json:"author"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
	Entities      *Entities      `json:"entities,omitempty"`
}

// Author is the account that posted a tweet.
type Author struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// PublicMetrics are the engagement counters of a tweet.
type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// Entities are the parsed URLs, hashtags and mentions in a tweet.
type Entities struct {
	URLs     []URLEntity `json:"urls,omitempty"`
	Hashtags []Hashtag   `json:"hashtags,omitempty"`
	Mentions []Mention   `json:"mentions,omitempty"`
}

// URLEntity maps a shortened link to its expanded and display forms.
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
}

// Hashtag is a #tag in a tweet.
type Hashtag struct {
	Tag string `json:"tag"`
}

// Mention is an @username in a tweet.
type Mention struct {
	Username string `json:"username"`
}

// CacheKey is the cache key for the latest maxResults tweets of username.
func CacheKey(username string, maxResults int) string {
	return fmt.Sprintf("twitter_%s_%d", username, maxResults)
}

// CachedTweets returns the cached tweets for username, or an empty slice when
// nothing valid is cached. It never calls the API.
func CachedTweets(store *cache.FileStore, username string, maxResults int) []Tweet {
	tweets, ok := cache.Get[[]Tweet](store, CacheKey(username, maxResults))
	if !ok || tweets == nil {
		return []Tweet{}
	}
	return tweets
}
