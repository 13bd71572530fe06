// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loaders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/lorecraft/core"
)

const defaultUserAgent = "lorecraft/1.0"

// HTMLLoader fetches web pages and converts them to markdown documents.
type HTMLLoader struct {
	urls      []string
	headers   map[string]string
	client    *http.Client
	converter *md.Converter
	poolSize  int
	logger    *slog.Logger
}

// HTMLOption customizes an HTMLLoader.
type HTMLOption func(*HTMLLoader)

// WithHeaders sets extra request headers sent with every fetch.
func WithHeaders(headers map[string]string) HTMLOption {
	return func(l *HTMLLoader) { l.headers = headers }
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) HTMLOption {
	return func(l *HTMLLoader) { l.client = client }
}

// WithFetchConcurrency bounds how many pages are fetched at once.
func WithFetchConcurrency(n int) HTMLOption {
	return func(l *HTMLLoader) { l.poolSize = n }
}

// NewHTMLLoader creates a loader for the given page URLs.
func NewHTMLLoader(urls []string, opts ...HTMLOption) (*HTMLLoader, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	loader := &HTMLLoader{
		urls:      urls,
		client:    &http.Client{Timeout: 30 * time.Second},
		converter: md.NewConverter("", true, nil),
		poolSize:  10,
		logger:    slog.Default().With("component", "loaders.html"),
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader, nil
}

// Load fetches every URL concurrently. Pages that fail to load are
// logged and skipped so one broken link does not lose the batch.
func (l *HTMLLoader) Load(ctx context.Context) ([]*core.Document, error) {
	pool, err := ants.NewPool(l.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	docs := make([]*core.Document, len(l.urls))

	var wg sync.WaitGroup
	for i, url := range l.urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wg.Add(1)
		i, url := i, url
		if err := pool.Submit(func() {
			defer wg.Done()
			doc, err := l.loadURL(ctx, url)
			if err != nil {
				l.logger.Warn("could not load page", "url", url, "error", err)
				return
			}
			docs[i] = doc
		}); err != nil {
			wg.Done()
			l.logger.Warn("could not schedule fetch", "url", url, "error", err)
		}
	}
	wg.Wait()

	loaded := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			loaded = append(loaded, doc)
		}
	}
	l.logger.Info("loaded pages", "requested", len(l.urls), "loaded", len(loaded))
	return loaded, nil
}

func (l *HTMLLoader) loadURL(ctx context.Context, url string) (*core.Document, error) {
	body, finalURL, err := l.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	page, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	// Follow a meta-refresh redirect once. Some documentation hosts
	// serve a stub page that points at the real location.
	if redirect := metaRefreshTarget(page, finalURL); redirect != "" {
		body, finalURL, err = l.fetch(ctx, redirect)
		if err != nil {
			return nil, err
		}
		page, err = goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to parse page: %w", err)
		}
	}

	markdown, err := l.converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to convert page: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, fmt.Errorf("page %s has no extractable content", finalURL)
	}

	return core.NewDocument(markdown, core.Metadata{
		Title:  strings.TrimSpace(page.Find("title").First().Text()),
		Link:   finalURL,
		Source: "web",
	}), nil
}

// fetch returns the response body and the final URL after redirects.
func (l *HTMLLoader) fetch(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ensureHTTP(url), nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for key, value := range l.headers {
		req.Header.Set(key, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	return string(body), resp.Request.URL.String(), nil
}

var refreshURLPattern = regexp.MustCompile(`(?i)url=(\S+)`)

// metaRefreshTarget extracts the target of a <meta http-equiv="refresh">
// tag, resolved against the page URL. Empty when the page has none.
func metaRefreshTarget(page *goquery.Document, pageURL string) string {
	content := ""
	page.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if equiv, _ := sel.Attr("http-equiv"); strings.EqualFold(equiv, "refresh") {
			content, _ = sel.Attr("content")
			return false
		}
		return true
	})
	if content == "" {
		return ""
	}

	matches := refreshURLPattern.FindStringSubmatch(content)
	if matches == nil {
		return ""
	}
	target := strings.Trim(matches[1], `'"`)
	ref, err := url.Parse(target)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return target
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func ensureHTTP(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

// SitemapLoader discovers page URLs from XML sitemaps and loads each
// page through an HTMLLoader.
type SitemapLoader struct {
	sitemaps []string
	include  []*regexp.Regexp
	exclude  []*regexp.Regexp
	client   *http.Client
	headers  map[string]string
	logger   *slog.Logger
}

// SitemapOption customizes a SitemapLoader.
type SitemapOption func(*SitemapLoader) error

// WithInclude keeps only URLs matching at least one pattern.
// Patterns are regular expressions matched anywhere in the URL.
func WithInclude(patterns ...string) SitemapOption {
	return func(l *SitemapLoader) error {
		compiled, err := compilePatterns(patterns)
		if err != nil {
			return err
		}
		l.include = compiled
		return nil
	}
}

// WithExclude drops URLs matching any pattern. Exclusion wins over inclusion.
func WithExclude(patterns ...string) SitemapOption {
	return func(l *SitemapLoader) error {
		compiled, err := compilePatterns(patterns)
		if err != nil {
			return err
		}
		l.exclude = compiled
		return nil
	}
}

// WithSitemapHTTPClient replaces the HTTP client, mainly for tests.
func WithSitemapHTTPClient(client *http.Client) SitemapOption {
	return func(l *SitemapLoader) error {
		l.client = client
		return nil
	}
}

// WithSitemapHeaders sets extra request headers for sitemap and page fetches.
func WithSitemapHeaders(headers map[string]string) SitemapOption {
	return func(l *SitemapLoader) error {
		l.headers = headers
		return nil
	}
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// NewSitemapLoader creates a loader for the given sitemap URLs.
func NewSitemapLoader(sitemaps []string, opts ...SitemapOption) (*SitemapLoader, error) {
	if len(sitemaps) == 0 {
		return nil, ErrNoURLs
	}

	loader := &SitemapLoader{
		sitemaps: sitemaps,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default().With("component", "loaders.sitemap"),
	}
	for _, opt := range opts {
		if err := opt(loader); err != nil {
			return nil, err
		}
	}
	return loader, nil
}

// Load resolves every sitemap to page URLs, filters them, and loads
// the pages.
func (l *SitemapLoader) Load(ctx context.Context) ([]*core.Document, error) {
	var urls []string
	for _, sitemap := range l.sitemaps {
		found, err := l.loadSitemap(ctx, sitemap)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}

	l.logger.Info("resolved sitemaps", "sitemaps", len(l.sitemaps), "urls", len(urls))
	if len(urls) == 0 {
		return nil, nil
	}

	pages, err := NewHTMLLoader(urls,
		WithHTTPClient(l.client),
		WithHeaders(l.headers),
	)
	if err != nil {
		return nil, err
	}
	return pages.Load(ctx)
}

func (l *SitemapLoader) loadSitemap(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ensureHTTP(url), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for key, value := range l.headers {
		req.Header.Set(key, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, url)
	}

	sitemap, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", url, err)
	}

	var urls []string
	sitemap.Find("loc").Each(func(_ int, sel *goquery.Selection) {
		loc := strings.TrimSpace(sel.Text())
		if loc != "" && l.keep(loc) {
			urls = append(urls, loc)
		}
	})
	return urls, nil
}

func (l *SitemapLoader) keep(url string) bool {
	for _, pattern := range l.exclude {
		if pattern.MatchString(url) {
			return false
		}
	}
	if len(l.include) == 0 {
		return true
	}
	for _, pattern := range l.include {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}
