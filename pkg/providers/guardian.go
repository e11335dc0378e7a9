package providers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
)

const (
	guardianShortName      = "guardian"
	guardianDefaultName    = "The Guardian"
	guardianDefaultBaseURL = "https://content.guardianapis.com"
)

// guardianFetcher adapts the Guardian Content API search endpoint.
type guardianFetcher struct {
	name    string
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewGuardianFetcher builds an adapter for the Guardian Content API.
func NewGuardianFetcher(cfg Descriptor, client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}

	name := cfg.Name
	if name == "" {
		name = guardianDefaultName
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = guardianDefaultBaseURL
	}

	return &guardianFetcher{
		name:    name,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (f *guardianFetcher) Name() string { return f.name }

type guardianResponse struct {
	Response struct {
		Status  string            `json:"status"`
		Total   int               `json:"total"`
		Results []guardianArticle `json:"results"`
	} `json:"response"`
}

type guardianArticle struct {
	ID                 string `json:"id"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	Fields             *struct {
		Thumbnail string `json:"thumbnail"`
		BodyText  string `json:"bodyText"`
	} `json:"fields"`
	Tags []struct {
		Type     string `json:"type"`
		WebTitle string `json:"webTitle"`
	} `json:"tags"`
}

func (f *guardianFetcher) FetchArticles(ctx context.Context, params domain.FetchParams) ([]domain.Article, error) {
	pageSize, page := normalizePage(params)

	q := url.Values{}
	q.Set("api-key", f.apiKey)
	q.Set("page-size", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("show-fields", "thumbnail,bodyText")
	q.Set("show-tags", "contributor")
	q.Set("order-by", guardianOrderBy(params.SortBy))
	if params.SearchQuery != "" {
		q.Set("q", params.SearchQuery)
	}

	var payload guardianResponse
	if err := fetchJSON(ctx, f.client, f.baseURL+"/search?"+q.Encode(), &payload); err != nil {
		return nil, newProviderError(f.name, "%v", err)
	}
	if payload.Response.Status != "ok" {
		return nil, newProviderError(f.name, "api returned status %q", payload.Response.Status)
	}

	articles := make([]domain.Article, 0, len(payload.Response.Results))
	for _, item := range payload.Response.Results {
		articles = append(articles, f.toArticle(item))
	}
	return articles, nil
}

func (f *guardianFetcher) SearchArticles(ctx context.Context, query string) ([]domain.Article, error) {
	return f.FetchArticles(ctx, domain.FetchParams{
		SearchQuery: query,
		PageSize:    defaultPageSize,
		SortBy:      domain.SortRelevance,
	})
}

func (f *guardianFetcher) toArticle(item guardianArticle) domain.Article {
	bodyText := ""
	thumbnail := ""
	if item.Fields != nil {
		bodyText = item.Fields.BodyText
		thumbnail = item.Fields.Thumbnail
	}

	description := PlaceholderDescription
	if bodyText != "" {
		description = truncate(bodyText, 200) + "..."
	}

	author := PlaceholderAuthor
	for _, tag := range item.Tags {
		if tag.Type == "contributor" && tag.WebTitle != "" {
			author = tag.WebTitle
			break
		}
	}

	return domain.Article{
		ID:          articleID(guardianShortName, item.ID),
		Title:       item.WebTitle,
		Description: description,
		Content:     fallback(bodyText, PlaceholderContent),
		URL:         item.WebURL,
		ImageURL:    fallback(thumbnail, PlaceholderImage),
		PublishedAt: item.WebPublicationDate,
		Author:      author,
		Source: domain.Source{
			ID:   guardianShortName,
			Name: guardianDefaultName,
		},
	}
}

// guardianOrderBy maps the generic sort vocabulary to the Guardian's order-by
// values. The Guardian has no popularity order, so that falls back to oldest.
func guardianOrderBy(sortBy domain.SortOption) string {
	switch sortBy {
	case domain.SortPublishedAt:
		return "newest"
	case domain.SortRelevance:
		return "relevance"
	case domain.SortPopularity:
		return "oldest"
	default:
		return "newest"
	}
}
