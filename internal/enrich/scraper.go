package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/internal/logger"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/providers"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

// Scraper fetches article pages and fills placeholder description/image
// fields from OG tags. It is best-effort: a failed scrape leaves the article
// untouched.
type Scraper struct {
	client httpclient.Client
	delay  time.Duration
	log    logger.Logger
}

// NewScraper constructs a scraper with the provided HTTP client (or default).
func NewScraper(client httpclient.Client, delay time.Duration, log logger.Logger) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scraper{client: client, delay: delay, log: log}
}

// Enrich iterates articles, fetching pages (with throttling) for those still
// carrying placeholder metadata and merging OG tags in.
func (s *Scraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)

	for i, art := range articles {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		if !needsEnrichment(art) {
			continue
		}

		enriched, err := s.fetchAndParse(ctx, art)
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
		} else {
			out[i] = enriched
		}

		if s.delay > 0 && i < len(articles)-1 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
	}

	return out
}

// needsEnrichment reports whether the adapter left placeholder metadata or an
// empty title behind.
func needsEnrichment(art domain.Article) bool {
	return strings.TrimSpace(art.Title) == "" ||
		art.Description == providers.PlaceholderDescription ||
		art.ImageURL == providers.PlaceholderImage
}

func (s *Scraper) fetchAndParse(ctx context.Context, art domain.Article) (domain.Article, error) {
	resp, err := s.client.Get(ctx, art.URL, nil)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return art, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}

	updated := art
	if strings.TrimSpace(updated.Title) == "" && meta.Title != "" {
		updated.Title = meta.Title
	}
	if updated.Description == providers.PlaceholderDescription && meta.Description != "" {
		updated.Description = meta.Description
	}
	if updated.ImageURL == providers.PlaceholderImage && meta.ImageURL != "" {
		updated.ImageURL = resolveURL(meta.ImageURL, art.URL)
	}

	return updated, nil
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	pm := pageMeta{}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = extract(`meta[property="og:image"]`)

	return pm, nil
}

// resolveURL makes a possibly-relative reference absolute against base.
func resolveURL(ref, base string) string {
	if strings.TrimSpace(ref) == "" {
		return ""
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if refURL.IsAbs() {
		return ref
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
