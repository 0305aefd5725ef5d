package social_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/social"
)

const (
	userJSON     = `{"data":{"id":"42","name":"Anas","username":"AnasAboreeda"}}`
	timelineJSON = `{
  "data": [
    {"id":"2","text":"second https://t.co/x","created_at":"2024-05-02T10:00:00.000Z","author_id":"42",
     "public_metrics":{"retweet_count":1,"reply_count":2,"like_count":3,"quote_count":4},
     "entities":{"urls":[{"url":"https://t.co/x","expanded_url":"https://example.com/post","display_url":"example.com/post"}]}},
    {"id":"1","text":"first","created_at":"2024-05-01T10:00:00.000Z","author_id":"42"}
  ],
  "includes":{"users":[{"id":"42","name":"Anas A.","username":"AnasAboreeda","profile_image_url":"https://img/a.png"}]}
}`
)

func newTestClient(t *testing.T, srv *httptest.Server) *social.Client {
	t.Helper()
	c, err := social.NewClient("test-token",
		social.WithBaseURL(srv.URL),
		social.WithRequestDelay(0),
		social.WithRetry(2, time.Millisecond, 5*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := social.NewClient("")
	require.ErrorIs(t, err, social.ErrMissingToken)
}

func TestClient_FetchTweets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/AnasAboreeda", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(userJSON))
	})
	mux.HandleFunc("/users/42/tweets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "5", q.Get("max_results"))
		assert.Equal(t, "created_at,public_metrics,entities", q.Get("tweet.fields"))
		assert.Equal(t, "username,name,profile_image_url", q.Get("user.fields"))
		assert.Equal(t, "author_id", q.Get("expansions"))
		assert.Equal(t, "retweets,replies", q.Get("exclude"))
		_, _ = w.Write([]byte(timelineJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tweets, err := newTestClient(t, srv).FetchTweets(context.Background(), "AnasAboreeda", 5)
	require.NoError(t, err)
	require.Len(t, tweets, 2)

	assert.Equal(t, "2", tweets[0].ID)
	assert.Equal(t, "Anas A.", tweets[0].Author.Name)
	assert.Equal(t, "https://img/a.png", tweets[0].Author.ProfileImageURL)
	require.NotNil(t, tweets[0].PublicMetrics)
	assert.Equal(t, 3, tweets[0].PublicMetrics.LikeCount)
	require.NotNil(t, tweets[0].Entities)
	assert.Equal(t, "example.com/post", tweets[0].Entities.URLs[0].DisplayURL)
	assert.Nil(t, tweets[1].PublicMetrics)
}

func TestClient_UserTweetsTruncatesToRequested(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("max_results"), "API minimum is requested")
		_, _ = w.Write([]byte(timelineJSON))
	}))
	defer srv.Close()

	user := &social.User{ID: "42", Username: "fallback", Name: "Fallback"}
	tweets, err := newTestClient(t, srv).UserTweets(context.Background(), user, 1)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "2", tweets[0].ID)
}

func TestClient_AuthorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"9","text":"t","created_at":"2024-01-01T00:00:00Z","author_id":"77"}]}`))
	}))
	defer srv.Close()

	user := &social.User{ID: "42", Username: "someone", Name: "Some One"}
	tweets, err := newTestClient(t, srv).UserTweets(context.Background(), user, 5)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "someone", tweets[0].Author.Username)
	assert.Equal(t, "Some One", tweets[0].Author.Name)
}

func TestClient_EmptyTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"result_count":0}}`))
	}))
	defer srv.Close()

	tweets, err := newTestClient(t, srv).UserTweets(context.Background(), &social.User{ID: "1"}, 5)
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

func TestClient_RateLimitIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	reset := time.Now().Add(10 * time.Minute).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("x-rate-limit-reset", strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"title":"Too Many Requests"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).LookupUser(context.Background(), "AnasAboreeda")
	require.ErrorIs(t, err, social.ErrRateLimited)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *social.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, reset, apiErr.ResetAt.Unix())
	assert.Contains(t, apiErr.Hint(time.Now()), "wait approximately")
	assert.Contains(t, apiErr.Body, "Too Many Requests")
}

func TestClient_ServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(userJSON))
	}))
	defer srv.Close()

	user, err := newTestClient(t, srv).LookupUser(context.Background(), "AnasAboreeda")
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
		hint   string
	}{
		{http.StatusUnauthorized, social.ErrUnauthorized, "bearer token"},
		{http.StatusForbidden, social.ErrForbidden, "access level"},
		{http.StatusNotFound, social.ErrUserNotFound, ""},
		{http.StatusTeapot, social.ErrUnexpectedStatus, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).LookupUser(context.Background(), "x")
			require.ErrorIs(t, err, tt.want)

			var apiErr *social.APIError
			require.ErrorAs(t, err, &apiErr)
			if tt.hint != "" {
				assert.Contains(t, apiErr.Hint(time.Now()), tt.hint)
			}
		})
	}
}

func TestClient_UnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"detail":"Could not find user"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).LookupUser(context.Background(), "ghost")
	require.ErrorIs(t, err, social.ErrUserNotFound)
}

func TestClient_DelayHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(userJSON))
	}))
	defer srv.Close()

	c, err := social.NewClient("t", social.WithBaseURL(srv.URL), social.WithRequestDelay(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.FetchTweets(ctx, "AnasAboreeda", 5)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
