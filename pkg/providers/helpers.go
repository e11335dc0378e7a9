package providers

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
)

// Placeholder values substituted for missing provider fields so canonical
// articles never carry empty fields.
const (
	PlaceholderDescription = "No description available"
	PlaceholderContent     = "No content available"
	PlaceholderAuthor      = "Unknown Author"
	PlaceholderImage       = "/placeholder-image.jpg"
)

const defaultPageSize = 20

// articleID derives a deterministic id from a provider-unique field, prefixed
// with the provider's short name to keep ids distinguishable across providers.
func articleID(short, unique string) string {
	sum := sha1.Sum([]byte(unique))
	return short + "-" + hex.EncodeToString(sum[:])
}

// normalizePage applies the default page window to raw fetch params.
func normalizePage(params domain.FetchParams) (pageSize, page int) {
	pageSize = params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page = params.Page
	if page <= 0 {
		page = 1
	}
	return pageSize, page
}

// fetchJSON performs a GET against the provider endpoint and decodes the JSON
// payload into out. Non-2xx statuses are returned as errors with a body snippet.
func fetchJSON(ctx context.Context, client httpclient.Client, url string, out any) error {
	resp, err := client.Get(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("http fetch: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// fallback substitutes a placeholder for empty provider fields.
func fallback(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// truncate shortens s to at most n runes. Cutting on a rune boundary keeps
// multi-byte characters intact, so the result is always valid UTF-8.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
