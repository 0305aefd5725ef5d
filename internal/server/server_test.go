package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/cache"
	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/server"
	"github.com/anasaboreeda/anascode/internal/social"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func writeArticle(t *testing.T, dir, slug, frontmatter string) {
	t.Helper()
	path := filepath.Join(dir, slug, "index.mdx")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte("---\n"+frontmatter+"---\n\nHello from "+slug+".\n"), 0600))
}

type fixture struct {
	srv   *httptest.Server
	cfg   *config.Config
	store *cache.FileStore
}

func newFixture(t *testing.T, production bool) *fixture {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "articles")

	writeArticle(t, contentDir, "first-post", "title: First Post\ndate: 2024-01-10\nsummary: The first one\ntags: [go]\n")
	writeArticle(t, contentDir, "second-post", "title: Second Post\ndate: 2024-06-01\nsummary: The second one\n")
	writeArticle(t, contentDir, "draft-post", "title: Draft\ndate: 2024-07-01\nsummary: Not yet\npublished: false\n")

	cfg := config.New()
	cfg.Content.Directory = contentDir
	cfg.Cache.Directory = filepath.Join(root, ".cache")
	if production {
		cfg.Content.Environment = config.EnvProduction
	}

	store, err := cache.NewFileStore(cfg.Cache.Directory)
	require.NoError(t, err)

	index := content.NewIndex(contentDir, content.WithProduction(cfg.Content.IsProduction()))
	s := server.New(cfg, index, store, server.WithClock(func() time.Time { return fixedNow }))

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, cfg: cfg, store: store}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, string(body))
}

func TestListArticles(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		want       []string
	}{
		{"development lists drafts", false, []string{"draft-post", "second-post", "first-post"}},
		{"production hides drafts", true, []string{"second-post", "first-post"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.production)
			resp, body := f.get(t, "/api/articles")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var articles []content.Article
			require.NoError(t, json.Unmarshal(body, &articles))
			slugs := make([]string, 0, len(articles))
			for _, a := range articles {
				slugs = append(slugs, a.Slug)
			}
			assert.Equal(t, tt.want, slugs)
		})
	}
}

func TestGetArticle(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get(t, "/api/articles/first-post")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Slug    string          `json:"slug"`
		Title   string          `json:"title"`
		Tags    []string        `json:"tags"`
		Content string          `json:"content"`
		JSONLD  json.RawMessage `json:"jsonLd"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "first-post", got.Slug)
	assert.Equal(t, "First Post", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.Contains(t, got.Content, "Hello from first-post.")

	var ld map[string]any
	require.NoError(t, json.Unmarshal(got.JSONLD, &ld))
	assert.Equal(t, "Article", ld["@type"])
	assert.Equal(t, "First Post", ld["headline"])
}

func TestGetArticle_NotFound(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get(t, "/api/articles/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"article not found"}`, string(body))

	resp, _ = f.get(t, "/api/articles/..hidden")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	prod := newFixture(t, true)
	resp, _ = prod.get(t, "/api/articles/draft-post")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "drafts are hidden in production")
}

func TestTweets(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get(t, "/api/tweets")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	tw := f.cfg.Social.Twitter
	tweets := []social.Tweet{{ID: "1", Text: "hello", CreatedAt: "2025-01-15T10:00:00.000Z"}}
	require.NoError(t, f.store.Put(social.CacheKey(tw.Username, tw.MaxResults), tweets, time.Hour))

	_, body = f.get(t, "/api/tweets")
	var got []social.Tweet
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
}

func TestLinks(t *testing.T) {
	f := newFixture(t, false)
	_, body := f.get(t, "/api/links")

	var groups []config.LinkGroup
	require.NoError(t, json.Unmarshal(body, &groups))
	require.Len(t, groups, 3)
	assert.Equal(t, "Writing", groups[0].Title)
}

func TestRSSAndSitemap(t *testing.T) {
	f := newFixture(t, true)

	resp, body := f.get(t, "/rss")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/rss+xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<title>Second Post</title>")
	assert.NotContains(t, string(body), "<title>Draft</title>")

	resp, body = f.get(t, "/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<loc>https://www.anascode.com/articles/first-post</loc>")
	assert.Contains(t, string(body), "<lastmod>2024-01-10</lastmod>")
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not found"}`, string(body))
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := config.New()
	cfg.Server.ShutdownTimeout = time.Second
	s := server.New(cfg, content.NewIndex(t.TempDir()), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, getErr := http.Get("http://" + ln.Addr().String() + "/api/tweets")
		if getErr != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
