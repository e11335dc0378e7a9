package providers

import (
	"context"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
)

// Fetcher translates one external news API into the canonical article
// contract. Implementations perform a single HTTP call per invocation and
// keep no state between calls.
type Fetcher interface {
	Name() string
	FetchArticles(ctx context.Context, params domain.FetchParams) ([]domain.Article, error)
	SearchArticles(ctx context.Context, query string) ([]domain.Article, error)
}

// FetcherRegistry resolves the fetcher constructor for a given descriptor.
type FetcherRegistry interface {
	FetcherFor(cfg Descriptor, client httpclient.Client) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within providers.
type HTTPClient = httpclient.Client
