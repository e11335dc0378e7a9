package domain

// Domain contains the canonical article model and the request/response
// contracts shared between the aggregation service and its callers.

// Source identifies the upstream provider an article came from.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is the normalized article shape shared across providers.
// Adapters substitute placeholders for missing optional fields, so every
// field is always populated.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	ImageURL    string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Author      string `json:"author"`
	Source      Source `json:"source"`
}

// SortOption is the provider-agnostic sort vocabulary. Adapters translate it
// into their provider's own terms; unsupported options fall back to a
// provider-chosen default.
type SortOption string

const (
	SortRelevance   SortOption = "relevance"
	SortPublishedAt SortOption = "publishedAt"
	SortPopularity  SortOption = "popularity"
)

// FetchParams is the generic fetch request fanned out to every provider.
type FetchParams struct {
	SearchQuery string
	Page        int
	PageSize    int
	SortBy      SortOption
}

// PaginationInfo describes the page window of a fetch result. TotalArticles
// is an estimate derived from the size of the current result set, not an
// exact count, and TotalPages is derived from that estimate.
type PaginationInfo struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalArticles int  `json:"totalArticles"`
	PageSize      int  `json:"pageSize"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

// FetchResult is the merged, deduplicated, sorted outcome of one aggregate
// fetch. An empty Articles slice means every provider failed or returned
// nothing.
type FetchResult struct {
	Articles   []Article      `json:"articles"`
	Pagination PaginationInfo `json:"pagination"`
}

// ProviderStatus is introspection data for one configured provider.
type ProviderStatus struct {
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Priority int    `json:"priority"`
}
