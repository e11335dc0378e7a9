package providers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
)

const (
	newsapiShortName      = "newsapi"
	newsapiDefaultName    = "NewsAPI.org"
	newsapiDefaultBaseURL = "https://newsapi.org/v2"
)

// newsapiFetcher adapts the NewsAPI.org /everything endpoint. Unlike the
// Guardian and NYT adapters, each item carries its own outlet, which is kept
// as the article source.
type newsapiFetcher struct {
	name    string
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewNewsAPIFetcher builds an adapter for NewsAPI.org.
func NewNewsAPIFetcher(cfg Descriptor, client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}

	name := cfg.Name
	if name == "" {
		name = newsapiDefaultName
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = newsapiDefaultBaseURL
	}

	return &newsapiFetcher{
		name:    name,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (f *newsapiFetcher) Name() string { return f.name }

type newsapiResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsapiArticle `json:"articles"`
}

type newsapiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (f *newsapiFetcher) FetchArticles(ctx context.Context, params domain.FetchParams) ([]domain.Article, error) {
	pageSize, page := normalizePage(params)

	q := url.Values{}
	q.Set("apiKey", f.apiKey)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("language", "en")
	q.Set("sortBy", newsapiSortBy(params.SortBy))
	if params.SearchQuery != "" {
		q.Set("q", params.SearchQuery)
	}

	var payload newsapiResponse
	if err := fetchJSON(ctx, f.client, f.baseURL+"/everything?"+q.Encode(), &payload); err != nil {
		return nil, newProviderError(f.name, "%v", err)
	}
	if payload.Status != "ok" {
		return nil, newProviderError(f.name, "api returned status %q", payload.Status)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		articles = append(articles, f.toArticle(item))
	}
	return articles, nil
}

func (f *newsapiFetcher) SearchArticles(ctx context.Context, query string) ([]domain.Article, error) {
	return f.FetchArticles(ctx, domain.FetchParams{
		SearchQuery: query,
		PageSize:    defaultPageSize,
		SortBy:      domain.SortRelevance,
	})
}

func (f *newsapiFetcher) toArticle(item newsapiArticle) domain.Article {
	return domain.Article{
		ID:          articleID(newsapiShortName, item.URL),
		Title:       item.Title,
		Description: fallback(item.Description, PlaceholderDescription),
		Content:     fallback(item.Content, PlaceholderContent),
		URL:         item.URL,
		ImageURL:    fallback(item.URLToImage, PlaceholderImage),
		PublishedAt: item.PublishedAt,
		Author:      fallback(item.Author, PlaceholderAuthor),
		Source: domain.Source{
			ID:   fallback(item.Source.ID, "unknown"),
			Name: item.Source.Name,
		},
	}
}

func newsapiSortBy(sortBy domain.SortOption) string {
	switch sortBy {
	case domain.SortPublishedAt:
		return "publishedAt"
	case domain.SortRelevance:
		return "relevancy"
	case domain.SortPopularity:
		return "popularity"
	default:
		return "publishedAt"
	}
}
