package providers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
)

const (
	nytShortName      = "nyt"
	nytDefaultName    = "The New York Times"
	nytDefaultBaseURL = "https://api.nytimes.com/svc/news/v3"
)

// Multimedia formats in preference order when picking an article image.
var nytImageFormats = []string{"mediumThreeByTwo440", "mediumThreeByTwo210", "Standard Thumbnail"}

// nytFetcher adapts the NYT Newswire API. The endpoint paginates by offset,
// so the generic page number is converted to one before the call.
type nytFetcher struct {
	name    string
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewNYTFetcher builds an adapter for the NYT Newswire API.
func NewNYTFetcher(cfg Descriptor, client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}

	name := cfg.Name
	if name == "" {
		name = nytDefaultName
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = nytDefaultBaseURL
	}

	return &nytFetcher{
		name:    name,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (f *nytFetcher) Name() string { return f.name }

type nytResponse struct {
	NumResults int          `json:"num_results"`
	Results    []nytArticle `json:"results"`
}

type nytArticle struct {
	URI           string     `json:"uri"`
	Title         string     `json:"title"`
	Abstract      string     `json:"abstract"`
	URL           string     `json:"url"`
	Byline        string     `json:"byline"`
	PublishedDate string     `json:"published_date"`
	Multimedia    []nytMedia `json:"multimedia"`
}

type nytMedia struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

func (f *nytFetcher) FetchArticles(ctx context.Context, params domain.FetchParams) ([]domain.Article, error) {
	pageSize, page := normalizePage(params)
	offset := (page - 1) * pageSize

	q := url.Values{}
	q.Set("api-key", f.apiKey)
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("offset", strconv.Itoa(offset))
	if params.SearchQuery != "" {
		q.Set("q", params.SearchQuery)
	}

	var payload nytResponse
	if err := fetchJSON(ctx, f.client, f.baseURL+"/content/all/all.json?"+q.Encode(), &payload); err != nil {
		return nil, newProviderError(f.name, "%v", err)
	}

	articles := make([]domain.Article, 0, len(payload.Results))
	for _, item := range payload.Results {
		articles = append(articles, f.toArticle(item))
	}
	return articles, nil
}

func (f *nytFetcher) SearchArticles(ctx context.Context, query string) ([]domain.Article, error) {
	return f.FetchArticles(ctx, domain.FetchParams{
		SearchQuery: query,
		PageSize:    defaultPageSize,
		SortBy:      domain.SortRelevance,
	})
}

func (f *nytFetcher) toArticle(item nytArticle) domain.Article {
	return domain.Article{
		ID:          articleID(nytShortName, item.URI),
		Title:       item.Title,
		Description: fallback(item.Abstract, PlaceholderDescription),
		Content:     fallback(item.Abstract, PlaceholderContent),
		URL:         item.URL,
		ImageURL:    fallback(nytImageURL(item.Multimedia), PlaceholderImage),
		PublishedAt: item.PublishedDate,
		Author:      fallback(item.Byline, PlaceholderAuthor),
		Source: domain.Source{
			ID:   nytShortName,
			Name: nytDefaultName,
		},
	}
}

func nytImageURL(media []nytMedia) string {
	for _, format := range nytImageFormats {
		for _, m := range media {
			if m.Format == format && m.URL != "" {
				return m.URL
			}
		}
	}
	return ""
}
