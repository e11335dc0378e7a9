package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/providers"
)

type fakeFetcher struct {
	name     string
	articles []domain.Article
	err      error
	calls    atomic.Int64
	lastSize atomic.Int64
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) FetchArticles(_ context.Context, params domain.FetchParams) ([]domain.Article, error) {
	f.calls.Add(1)
	f.lastSize.Store(int64(params.PageSize))
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func (f *fakeFetcher) SearchArticles(ctx context.Context, query string) ([]domain.Article, error) {
	return f.FetchArticles(ctx, domain.FetchParams{SearchQuery: query})
}

// fakeRegistry hands out pre-built fetchers keyed by descriptor id.
type fakeRegistry struct {
	fetchers map[string]providers.Fetcher
}

func (r fakeRegistry) FetcherFor(cfg providers.Descriptor, _ httpclient.Client) (providers.Fetcher, error) {
	fetcher, ok := r.fetchers[cfg.ID]
	if !ok {
		return nil, fmt.Errorf("no fake fetcher for %q", cfg.ID)
	}
	return fetcher, nil
}

func article(id, url, publishedAt string) domain.Article {
	return domain.Article{ID: id, Title: id, URL: url, PublishedAt: publishedAt}
}

func newTestService(t *testing.T, fetchers map[string]providers.Fetcher, cfgs []providers.Descriptor) *Service {
	t.Helper()
	svc, err := NewService(cfgs, fakeRegistry{fetchers: fetchers}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func twoProviderDescriptors() []providers.Descriptor {
	return []providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a", Priority: 2},
		{ID: "b", Name: "Provider B", Kind: "b", Priority: 1},
	}
}

func TestFetchArticlesMergesDedupesAndSorts(t *testing.T) {
	providerA := &fakeFetcher{name: "Provider A", articles: []domain.Article{
		article("a-1", "https://example.com/u1", "2025-01-27T12:00:00Z"),
		article("a-2", "https://example.com/u2", "2025-01-26T12:00:00Z"),
	}}
	providerB := &fakeFetcher{name: "Provider B", articles: []domain.Article{
		article("b-2", "https://EXAMPLE.com/u2", "2025-01-26T12:00:00Z"),
		article("b-3", "https://example.com/u3", "2025-01-25T12:00:00Z"),
	}}

	svc := newTestService(t, map[string]providers.Fetcher{"a": providerA, "b": providerB}, twoProviderDescriptors())

	result := svc.FetchArticles(context.Background(), domain.FetchParams{Page: 1, PageSize: 10})
	if len(result.Articles) != 3 {
		t.Fatalf("expected 3 unique articles, got %d", len(result.Articles))
	}

	gotIDs := make([]string, 0, len(result.Articles))
	for _, a := range result.Articles {
		gotIDs = append(gotIDs, a.ID)
	}
	// u2 is shared; the higher-priority provider's copy wins, and the result
	// is sorted newest first.
	want := []string{"a-1", "a-2", "b-3"}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, gotIDs)
		}
	}

	for i := 1; i < len(result.Articles); i++ {
		prev := parsePublishedAt(result.Articles[i-1].PublishedAt)
		curr := parsePublishedAt(result.Articles[i].PublishedAt)
		if curr.After(prev) {
			t.Fatalf("articles not sorted newest first at index %d", i)
		}
	}
}

func TestFetchArticlesIdempotentForIdenticalUpstreamData(t *testing.T) {
	providerA := &fakeFetcher{name: "Provider A", articles: []domain.Article{
		article("a-1", "https://example.com/u1", "2025-01-27T12:00:00Z"),
		article("a-2", "https://example.com/u2", "2025-01-26T12:00:00Z"),
	}}
	providerB := &fakeFetcher{name: "Provider B", articles: []domain.Article{
		article("b-2", "https://example.com/u2", "2025-01-26T12:00:00Z"),
		article("b-3", "https://example.com/u3", "2025-01-25T12:00:00Z"),
	}}

	svc := newTestService(t, map[string]providers.Fetcher{"a": providerA, "b": providerB}, twoProviderDescriptors())

	params := domain.FetchParams{Page: 1, PageSize: 10}
	first := svc.FetchArticles(context.Background(), params)
	second := svc.FetchArticles(context.Background(), params)

	if len(first.Articles) != len(second.Articles) {
		t.Fatalf("result sizes differ: %d vs %d", len(first.Articles), len(second.Articles))
	}
	for i := range first.Articles {
		if first.Articles[i].ID != second.Articles[i].ID {
			t.Fatalf("article order differs at index %d: %s vs %s", i, first.Articles[i].ID, second.Articles[i].ID)
		}
	}
	if first.Pagination != second.Pagination {
		t.Fatalf("pagination differs: %+v vs %+v", first.Pagination, second.Pagination)
	}
}

func TestFetchArticlesSplitsPageSizeAcrossProviders(t *testing.T) {
	providerA := &fakeFetcher{name: "Provider A"}
	providerB := &fakeFetcher{name: "Provider B"}

	svc := newTestService(t, map[string]providers.Fetcher{"a": providerA, "b": providerB}, twoProviderDescriptors())

	svc.FetchArticles(context.Background(), domain.FetchParams{Page: 2, PageSize: 12})

	if got := providerA.lastSize.Load(); got != 6 {
		t.Errorf("provider A got page size %d, want 6", got)
	}
	if got := providerB.lastSize.Load(); got != 6 {
		t.Errorf("provider B got page size %d, want 6", got)
	}
}

func TestFetchArticlesPartialFailure(t *testing.T) {
	failing := &fakeFetcher{name: "Provider A", err: errors.New("upstream down")}
	healthy := &fakeFetcher{name: "Provider B", articles: []domain.Article{
		article("b-1", "https://example.com/u1", "2025-01-27T12:00:00Z"),
		article("b-2", "https://example.com/u2", "2025-01-26T12:00:00Z"),
	}}

	svc := newTestService(t, map[string]providers.Fetcher{"a": failing, "b": healthy}, twoProviderDescriptors())

	result := svc.FetchArticles(context.Background(), domain.FetchParams{})
	if len(result.Articles) != 2 {
		t.Fatalf("expected healthy provider's 2 articles, got %d", len(result.Articles))
	}
}

func TestFetchArticlesTotalFailure(t *testing.T) {
	svc := newTestService(t, map[string]providers.Fetcher{
		"a": &fakeFetcher{name: "Provider A", err: errors.New("down")},
		"b": &fakeFetcher{name: "Provider B", err: errors.New("also down")},
	}, twoProviderDescriptors())

	result := svc.FetchArticles(context.Background(), domain.FetchParams{Page: 1, PageSize: 20})
	if len(result.Articles) != 0 {
		t.Fatalf("expected empty result set, got %d articles", len(result.Articles))
	}
	if result.Pagination.TotalPages < minTotalPages {
		t.Errorf("expected pagination floor %d, got %d", minTotalPages, result.Pagination.TotalPages)
	}
}

func TestFetchArticlesSortsUnparseableTimestampsLast(t *testing.T) {
	fetcher := &fakeFetcher{name: "Provider A", articles: []domain.Article{
		article("a-1", "https://example.com/u1", "not-a-date"),
		article("a-2", "https://example.com/u2", "2025-01-26T12:00:00Z"),
	}}
	svc := newTestService(t, map[string]providers.Fetcher{"a": fetcher}, []providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a"},
	})

	result := svc.FetchArticles(context.Background(), domain.FetchParams{})
	if result.Articles[0].ID != "a-2" || result.Articles[1].ID != "a-1" {
		t.Fatalf("expected unparseable timestamp last, got %s, %s", result.Articles[0].ID, result.Articles[1].ID)
	}
}

func TestGetArticleByIDCacheHit(t *testing.T) {
	fetcher := &fakeFetcher{name: "Provider A", articles: []domain.Article{
		article("a-1", "https://example.com/u1", "2025-01-27T12:00:00Z"),
	}}
	svc := newTestService(t, map[string]providers.Fetcher{"a": fetcher}, []providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a"},
	})

	svc.FetchArticles(context.Background(), domain.FetchParams{})
	callsAfterFetch := fetcher.calls.Load()

	got, err := svc.GetArticleByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetArticleByID: %v", err)
	}
	if got.ID != "a-1" {
		t.Errorf("unexpected article %s", got.ID)
	}
	if fetcher.calls.Load() != callsAfterFetch {
		t.Error("cache hit should not re-query providers")
	}
}

func TestGetArticleByIDCacheMissRequeriesProviders(t *testing.T) {
	fetcher := &fakeFetcher{name: "Provider A", articles: []domain.Article{
		article("a-9", "https://example.com/u9", "2025-01-27T12:00:00Z"),
	}}
	svc := newTestService(t, map[string]providers.Fetcher{"a": fetcher}, []providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a"},
	})

	got, err := svc.GetArticleByID(context.Background(), "a-9")
	if err != nil {
		t.Fatalf("GetArticleByID: %v", err)
	}
	if got.ID != "a-9" {
		t.Errorf("unexpected article %s", got.ID)
	}
	if size := fetcher.lastSize.Load(); size != detailLookupPageSize {
		t.Errorf("expected lookup page size %d, got %d", detailLookupPageSize, size)
	}
}

func TestGetArticleByIDNotFound(t *testing.T) {
	svc := newTestService(t, map[string]providers.Fetcher{
		"a": &fakeFetcher{name: "Provider A"},
		"b": &fakeFetcher{name: "Provider B", err: errors.New("down")},
	}, twoProviderDescriptors())

	_, err := svc.GetArticleByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected domain.ErrNotFound, got %v", err)
	}
}

func TestSearchArticlesUsesRelevanceSort(t *testing.T) {
	fetcher := &fakeFetcher{name: "Provider A", articles: []domain.Article{
		article("a-1", "https://example.com/u1", "2025-01-27T12:00:00Z"),
	}}
	svc := newTestService(t, map[string]providers.Fetcher{"a": fetcher}, []providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a"},
	})

	result := svc.SearchArticles(context.Background(), "climate")
	if len(result.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(result.Articles))
	}
	if fetcher.calls.Load() != 1 {
		t.Errorf("expected one provider call, got %d", fetcher.calls.Load())
	}
}

func TestNewServiceNoEnabledProviders(t *testing.T) {
	off := false
	_, err := NewService([]providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a", Enabled: &off},
	}, fakeRegistry{}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "no providers are enabled") {
		t.Fatalf("expected no-enabled-providers error, got %v", err)
	}
}

func TestNewServiceUnknownKind(t *testing.T) {
	_, err := NewService([]providers.Descriptor{
		{ID: "x", Name: "Xinhua", Kind: "xinhua"},
	}, providers.DefaultFetcherRegistry(), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "build provider x") {
		t.Fatalf("expected construction error, got %v", err)
	}
}

func TestProviderStatusAndActiveProviders(t *testing.T) {
	off := false
	cfgs := []providers.Descriptor{
		{ID: "a", Name: "Provider A", Kind: "a", Priority: 1},
		{ID: "b", Name: "Provider B", Kind: "b", Priority: 9},
		{ID: "c", Name: "Provider C", Kind: "c", Enabled: &off},
	}
	svc := newTestService(t, map[string]providers.Fetcher{
		"a": &fakeFetcher{name: "Provider A"},
		"b": &fakeFetcher{name: "Provider B"},
	}, cfgs)

	status := svc.ProviderStatus()
	if len(status) != 3 {
		t.Fatalf("expected all 3 providers reported, got %d", len(status))
	}
	for _, st := range status {
		if st.Name == "Provider C" && st.Enabled {
			t.Error("expected Provider C reported as disabled")
		}
	}

	active := svc.ActiveProviders()
	if len(active) != 2 {
		t.Fatalf("expected 2 active providers, got %d", len(active))
	}
	if active[0] != "Provider B" || active[1] != "Provider A" {
		t.Errorf("expected priority order [Provider B, Provider A], got %v", active)
	}
}
