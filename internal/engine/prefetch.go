package engine

import (
	"context"
	"io"
	"net/http"
)

// Prefetcher warms caches for freshly catalogued image URLs. Prefetching
// is best-effort: it only affects later-screen latency, never correctness.
type Prefetcher interface {
	Prefetch(ctx context.Context, urls []string)
}

// HTTPPrefetcher fetches each URL once and discards the body, relying on
// intermediary caches (CDN, OS) to keep it warm. All failures are ignored.
type HTTPPrefetcher struct {
	client *http.Client
}

// NewHTTPPrefetcher creates a prefetcher using the given client.
func NewHTTPPrefetcher(client *http.Client) *HTTPPrefetcher {
	return &HTTPPrefetcher{client: client}
}

func (p *HTTPPrefetcher) Prefetch(ctx context.Context, urls []string) {
	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			continue
		}
		resp, err := p.client.Do(req)
		if err != nil {
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

// NopPrefetcher disables prefetching.
type NopPrefetcher struct{}

func (NopPrefetcher) Prefetch(context.Context, []string) {}
