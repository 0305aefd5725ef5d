package linkcheck_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/anasaboreeda/anascode/internal/linkcheck"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func html(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body>%s</body></html>", body)
	}
}

// newSite serves a small site linking to an external host.
func newSite(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()

	ext := http.NewServeMux()
	ext.HandleFunc("/ok", func(http.ResponseWriter, *http.Request) {})
	ext.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	external := httptest.NewServer(ext)
	t.Cleanup(external.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", html(fmt.Sprintf(`
		<a href="/about">About</a>
		<a href="/articles">Articles</a>
		<a href="/missing">Broken</a>
		<a href="/rss.xml">RSS</a>
		<a href="mailto:info@example.com">Mail</a>
		<a href="tel:+31000000">Call</a>
		<a href="#top">Top</a>
		<a href="%[1]s/ok">External</a>
		<a href="%[1]s/gone">External gone</a>`, external.URL)))
	mux.HandleFunc("/about", html(`<a href="/">Home</a><a href="/head-not-allowed">Legacy</a><a href="/about#team">Team</a>`))
	mux.HandleFunc("/articles", html(`<a href="articles/first-post">First</a><a href="/">Home</a>`))
	mux.HandleFunc("/articles/first-post", html(`<a href="/missing">Broken again</a>`))
	mux.HandleFunc("/rss.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<rss version="2.0"></rss>`)
	})
	mux.HandleFunc("/head-not-allowed", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		html(`<p>legacy</p>`)(w, r)
	})
	site := httptest.NewServer(mux)
	t.Cleanup(site.Close)

	return site, external
}

func byURL(results []linkcheck.Result) map[string]linkcheck.Result {
	m := make(map[string]linkcheck.Result, len(results))
	for _, r := range results {
		m[r.URL] = r
	}
	return m
}

func TestChecker_Run(t *testing.T) {
	site, external := newSite(t)

	checker, err := linkcheck.New(site.URL, linkcheck.WithConcurrency(4), linkcheck.WithRetry(0, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	report, err := checker.Run(context.Background())
	require.NoError(t, err)

	success := byURL(report.Success)
	failed := byURL(report.Failed)
	base := site.URL + "/"

	for _, path := range []string{"/", "/about", "/articles", "/articles/first-post", "/rss.xml", "/head-not-allowed"} {
		assert.Contains(t, success, site.URL+path)
	}
	assert.Contains(t, success, external.URL+"/ok")
	assert.Equal(t, http.StatusOK, success[site.URL+"/head-not-allowed"].Status, "falls back to GET")

	require.Len(t, failed, 2)
	missing := failed[site.URL+"/missing"]
	assert.Equal(t, http.StatusNotFound, missing.Status)
	assert.Equal(t, "Not Found", missing.StatusText)
	assert.Equal(t, []string{base, site.URL + "/articles/first-post"}, missing.FoundOn)
	assert.Equal(t, http.StatusGone, failed[external.URL+"/gone"].Status)

	assert.ElementsMatch(t, []string{"mailto:info@example.com", "tel:+31000000", "#top"}, report.Skipped)
	assert.Equal(t, 5, report.PagesCrawled, "every internal page without a file extension")
	assert.Equal(t, len(report.Success)+len(report.Failed), report.Total())

	home := success[base]
	assert.ElementsMatch(t, []string{site.URL + "/about", site.URL + "/articles"}, home.FoundOn)
	assert.NotContains(t, success, site.URL+"/about#team", "fragments are dropped")
}

func TestChecker_Progress(t *testing.T) {
	site, _ := newSite(t)

	var mu sync.Mutex
	var seen []string
	checker, err := linkcheck.New(site.URL, linkcheck.WithRetry(0, time.Millisecond, time.Millisecond),
		linkcheck.WithProgress(func(r linkcheck.Result) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, r.URL)
		}))
	require.NoError(t, err)

	report, err := checker.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, report.Total())
}

func TestChecker_MaxPages(t *testing.T) {
	site, _ := newSite(t)

	checker, err := linkcheck.New(site.URL, linkcheck.WithMaxPages(1), linkcheck.WithRetry(0, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	report, err := checker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.PagesCrawled)
	assert.NotContains(t, byURL(report.Success), site.URL+"/articles/first-post")
}

func TestChecker_UnreachableBase(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	checker, err := linkcheck.New(srv.URL, linkcheck.WithRetry(0, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	_, err = checker.Run(context.Background())
	require.Error(t, err)
}

func TestChecker_Cancelled(t *testing.T) {
	site, _ := newSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker, err := linkcheck.New(site.URL)
	require.NoError(t, err)

	_, err = checker.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidBase(t *testing.T) {
	for _, base := range []string{"", "localhost:3000", "ftp://example.com", "/relative"} {
		_, err := linkcheck.New(base)
		assert.ErrorIs(t, err, linkcheck.ErrInvalidBaseURL, base)
	}
	c, err := linkcheck.New("http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/", c.BaseURL())
}
