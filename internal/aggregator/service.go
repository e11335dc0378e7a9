package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/internal/logger"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/providers"
)

const (
	defaultPageSize = 20
	defaultPage     = 1

	// Page size used when re-querying providers for a single article that
	// missed the cache. Large enough to plausibly include the target item.
	detailLookupPageSize = 100
)

// Service aggregates articles across every enabled provider: it fans out
// fetch requests, merges and deduplicates the results, sorts them by publish
// time, and keeps the last result set in memory for detail lookups.
type Service struct {
	descriptors []providers.Descriptor
	fetchers    []providers.Fetcher
	cache       atomic.Value // []domain.Article, replaced whole on each fetch
	log         logger.Logger
}

// NewService builds the aggregation service from the full descriptor list.
// Disabled descriptors are kept for introspection only; adapters are
// constructed for enabled ones in descending priority order. Zero enabled
// providers or an unrecognized provider kind is a construction error.
func NewService(cfgs []providers.Descriptor, reg providers.FetcherRegistry, client httpclient.Client, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	if reg == nil {
		reg = providers.DefaultFetcherRegistry()
	}

	enabled := make([]providers.Descriptor, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.EnabledValue() {
			enabled = append(enabled, cfg)
		}
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no providers are enabled; enable at least one provider in the configuration")
	}
	sort.SliceStable(enabled, func(i, j int) bool { return enabled[i].Priority > enabled[j].Priority })

	fetchers := make([]providers.Fetcher, 0, len(enabled))
	for _, cfg := range enabled {
		fetcher, err := reg.FetcherFor(cfg, client)
		if err != nil {
			return nil, fmt.Errorf("build provider %s: %w", cfg.ID, err)
		}
		fetchers = append(fetchers, fetcher)
	}

	return &Service{
		descriptors: append([]providers.Descriptor(nil), cfgs...),
		fetchers:    fetchers,
		log:         log,
	}, nil
}

// FetchArticles fans the request out to every adapter, splitting the page
// size evenly across them with the same logical page number. Adapter failures
// are logged and discarded; if some adapters succeed the call still returns
// their articles, and total failure yields an empty result set. Callers
// detect total failure by article count, not by error.
func (s *Service) FetchArticles(ctx context.Context, params domain.FetchParams) domain.FetchResult {
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := params.Page
	if page <= 0 {
		page = defaultPage
	}

	perProvider := (pageSize + len(s.fetchers) - 1) / len(s.fetchers)

	// Indexed result slots keep the merge in priority order regardless of
	// which goroutine finishes first.
	results := make([][]domain.Article, len(s.fetchers))

	var wg sync.WaitGroup
	for i, fetcher := range s.fetchers {
		wg.Add(1)
		go func(i int, fetcher providers.Fetcher) {
			defer wg.Done()

			providerParams := params
			providerParams.PageSize = perProvider
			providerParams.Page = page

			articles, err := fetcher.FetchArticles(ctx, providerParams)
			if err != nil {
				s.log.WarnObj("provider fetch failed", "provider_error", map[string]any{
					"provider": fetcher.Name(),
					"error":    err.Error(),
				})
				return
			}
			results[i] = articles
		}(i, fetcher)
	}
	wg.Wait()

	merged := make([]domain.Article, 0, pageSize)
	for _, articles := range results {
		merged = append(merged, articles...)
	}

	unique := dedupeByURL(merged)
	sortByPublishedAt(unique)

	s.cache.Store(unique)

	s.log.InfoObj("aggregate fetch completed", "fetch_result", map[string]any{
		"page":           page,
		"page_size":      pageSize,
		"per_provider":   perProvider,
		"merged_count":   len(merged),
		"unique_count":   len(unique),
		"providers_used": len(s.fetchers),
	})

	return domain.FetchResult{
		Articles:   unique,
		Pagination: paginate(len(unique), page, pageSize),
	}
}

// SearchArticles fetches articles matching the query, sorted by relevance.
func (s *Service) SearchArticles(ctx context.Context, query string) domain.FetchResult {
	return s.FetchArticles(ctx, domain.FetchParams{
		SearchQuery: query,
		PageSize:    defaultPageSize,
		SortBy:      domain.SortRelevance,
	})
}

// GetArticleByID returns the article with the given id. The last fetched
// result set is consulted first; on a miss every provider is re-queried with
// a larger page size and the first match wins. Adapter errors are swallowed.
// A lookup that matches nothing returns domain.ErrNotFound, which callers
// should treat as a normal outcome.
func (s *Service) GetArticleByID(ctx context.Context, id string) (domain.Article, error) {
	if cached, ok := s.cache.Load().([]domain.Article); ok {
		for _, article := range cached {
			if article.ID == id {
				return article, nil
			}
		}
	}

	for _, fetcher := range s.fetchers {
		articles, err := fetcher.FetchArticles(ctx, domain.FetchParams{PageSize: detailLookupPageSize})
		if err != nil {
			s.log.WarnObj("provider lookup failed", "provider_error", map[string]any{
				"provider":   fetcher.Name(),
				"article_id": id,
				"error":      err.Error(),
			})
			continue
		}
		for _, article := range articles {
			if article.ID == id {
				return article, nil
			}
		}
	}

	return domain.Article{}, domain.ErrNotFound
}

// ProviderStatus reports every configured provider, enabled or not.
func (s *Service) ProviderStatus() []domain.ProviderStatus {
	out := make([]domain.ProviderStatus, 0, len(s.descriptors))
	for _, cfg := range s.descriptors {
		out = append(out, domain.ProviderStatus{
			Name:     cfg.Name,
			Enabled:  cfg.EnabledValue(),
			Priority: cfg.Priority,
		})
	}
	return out
}

// ActiveProviders lists the names of the constructed adapters in priority order.
func (s *Service) ActiveProviders() []string {
	out := make([]string, 0, len(s.fetchers))
	for _, fetcher := range s.fetchers {
		out = append(out, fetcher.Name())
	}
	return out
}

// dedupeByURL drops articles whose URL (case-insensitive) was already seen,
// keeping the first occurrence. Since merge order follows provider priority,
// higher-priority providers win duplicate URLs.
func dedupeByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		key := strings.ToLower(article.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, article)
	}
	return out
}

// sortByPublishedAt orders articles newest first. The sort is stable, so
// equal timestamps retain merge order.
func sortByPublishedAt(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return parsePublishedAt(articles[i].PublishedAt).After(parsePublishedAt(articles[j].PublishedAt))
	})
}

// parsePublishedAt parses the ISO-8601 publish timestamp. Unparseable values
// map to the zero time and sort last.
func parsePublishedAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
