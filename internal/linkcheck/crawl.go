package linkcheck

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
)

const maxPageBytes = 5 << 20

// crawlState is shared by the workers of one Run.
type crawlState struct {
	mu       sync.Mutex
	visited  map[string]bool
	results  map[string]*Result
	order    []string
	skipped  []string
	seenSkip map[string]bool
}

func newCrawlState() *crawlState {
	return &crawlState{
		visited:  make(map[string]bool),
		results:  make(map[string]*Result),
		seenSkip: make(map[string]bool),
	}
}

// page is a crawled page and the hrefs found on it.
type page struct {
	url   *url.URL
	hrefs []string
	err   error
}

// Run crawls the site breadth first. Each round fetches the current frontier
// of pages, then checks every link not seen before; internal page links that
// answered OK form the next frontier. The returned error is non-nil only if
// the base page cannot be fetched or ctx is cancelled.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	defer c.http.HTTPClient.CloseIdleConnections()

	st := newCrawlState()
	start := c.base.String()
	st.visited[start] = true
	frontier := []string{start}
	crawled := 0

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pages := c.fetchPages(ctx, frontier)
		if crawled == 0 && pages[0].err != nil {
			return nil, fmt.Errorf("fetching %s: %w", start, pages[0].err)
		}
		crawled += len(pages)

		pending := c.collect(st, pages)
		c.checkLinks(ctx, st, pending)

		var next []string
		for _, link := range pending {
			if crawled+len(next) >= c.maxPages {
				c.logger.Warn().Int("max_pages", c.maxPages).Msg("page limit reached, not crawling further")
				break
			}
			if !c.internal(link) || !crawlable(link) || st.visited[link] || !st.results[link].OK() {
				continue
			}
			st.visited[link] = true
			next = append(next, link)
		}
		frontier = next
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return st.report(crawled), nil
}

// collect records every href of pages against the state and returns the
// links that still need checking, in discovery order.
func (c *Checker) collect(st *crawlState, pages []page) []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	var pending []string
	for _, p := range pages {
		if p.err != nil {
			c.logger.Warn().Err(p.err).Str("page", p.url.String()).Msg("failed to fetch page")
			continue
		}
		foundOn := p.url.String()
		for _, href := range p.hrefs {
			if skippable(href) {
				st.skip(href)
				continue
			}
			link, ok := resolve(p.url, href)
			if !ok {
				st.skip(href)
				continue
			}
			if r, seen := st.results[link]; seen {
				if !slices.Contains(r.FoundOn, foundOn) {
					r.FoundOn = append(r.FoundOn, foundOn)
				}
				continue
			}
			st.results[link] = &Result{URL: link, FoundOn: []string{foundOn}}
			st.order = append(st.order, link)
			pending = append(pending, link)
		}
	}
	return pending
}

func (st *crawlState) skip(href string) {
	if st.seenSkip[href] {
		return
	}
	st.seenSkip[href] = true
	st.skipped = append(st.skipped, href)
}

func (st *crawlState) report(crawled int) *Report {
	r := &Report{
		Success:      []Result{},
		Failed:       []Result{},
		Skipped:      st.skipped,
		PagesCrawled: crawled,
	}
	if r.Skipped == nil {
		r.Skipped = []string{}
	}
	for _, link := range st.order {
		res := *st.results[link]
		if res.OK() {
			r.Success = append(r.Success, res)
		} else {
			r.Failed = append(r.Failed, res)
		}
	}
	return r
}

// fetchPages downloads the given pages concurrently and extracts their
// anchors. Results keep the order of urls.
func (c *Checker) fetchPages(ctx context.Context, urls []string) []page {
	pages := make([]page, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, raw := range urls {
		g.Go(func() error {
			u, _ := url.Parse(raw)
			hrefs, err := c.fetchPage(gCtx, raw)
			pages[i] = page{url: u, hrefs: hrefs, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return pages
}

func (c *Checker) fetchPage(ctx context.Context, pageURL string) ([]string, error) {
	c.logger.Debug().Str("page", pageURL).Msg("crawling")

	resp, err := c.do(ctx, http.MethodGet, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "" && mt != "text/html" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs, nil
}

// checkLinks checks links concurrently and stores their status in st.
func (c *Checker) checkLinks(ctx context.Context, st *crawlState, links []string) {
	var progressMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, link := range links {
		g.Go(func() error {
			status, text := c.check(gCtx, link)

			st.mu.Lock()
			r := st.results[link]
			r.Status, r.StatusText = status, text
			snapshot := *r
			st.mu.Unlock()

			if c.progress != nil {
				progressMu.Lock()
				c.progress(snapshot)
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
}

// check sends a HEAD request, falling back to GET for servers that do not
// allow HEAD. A transport failure yields status 0 and the error text.
func (c *Checker) check(ctx context.Context, link string) (int, string) {
	resp, err := c.do(ctx, http.MethodHead, link)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp.Body.Close()
		resp, err = c.do(ctx, http.MethodGet, link)
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("link", link).Msg("link check failed")
		return 0, err.Error()
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
	resp.Body.Close()
	return resp.StatusCode, http.StatusText(resp.StatusCode)
}

func (c *Checker) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.http.Do(req)
}
