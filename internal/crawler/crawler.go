package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Page is one rendered page, opened by a Renderer and released via Close.
type Page interface {
	HTML(ctx context.Context) (string, error)
	Links(ctx context.Context) ([]string, error)
	Close()
}

// Renderer loads a URL in a browser context.
type Renderer interface {
	Render(ctx context.Context, url string) (Page, error)
}

// Crawl discovers same-origin URLs reachable from seed within maxDepth
// levels, depth-first, in link-discovery order. The seed itself is always
// first in the result when maxDepth > 0. Pages that fail to load contribute
// no links but do not abort the crawl.
func Crawl(ctx context.Context, r Renderer, seed string, maxDepth int) ([]string, error) {
	seedU, err := url.Parse(seed)
	if err != nil || !seedU.IsAbs() || seedU.Host == "" {
		return nil, fmt.Errorf("seed must be an absolute URL, got %q", seed)
	}

	visited := NewVisitedSet()
	return crawl(ctx, r, seed, seedU, maxDepth, visited), nil
}

func crawl(ctx context.Context, r Renderer, pageURL string, seed *url.URL, depth int, visited *VisitedSet) []string {
	if depth <= 0 {
		return nil
	}
	if !visited.Visit(pageURL) {
		return nil
	}

	urls := []string{pageURL}

	page, err := r.Render(ctx, pageURL)
	if err != nil {
		slog.WarnContext(ctx, "page failed to load, skipping", "url", pageURL, "error", err)
		return urls
	}
	links, err := page.Links(ctx)
	page.Close()
	if err != nil {
		slog.WarnContext(ctx, "link extraction failed, skipping", "url", pageURL, "error", err)
		return urls
	}

	for _, link := range sameOriginLinks(seed, links) {
		urls = append(urls, crawl(ctx, r, link, seed, depth-1, visited)...)
	}
	return urls
}

// sameOriginLinks keeps links whose scheme, host and port match the seed,
// strips fragments and deduplicates, preserving discovery order.
func sameOriginLinks(seed *url.URL, links []string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Scheme != seed.Scheme || u.Host != seed.Host {
			continue
		}

		u.Fragment = ""
		normalized := u.String()

		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}
