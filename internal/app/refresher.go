package app

import (
	"context"
	"fmt"
	"time"

	"github.com/newsblend-hq/newsblend-aggregator/internal/aggregator"
	"github.com/newsblend-hq/newsblend-aggregator/internal/config"
	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
	"github.com/newsblend-hq/newsblend-aggregator/internal/enrich"
	"github.com/newsblend-hq/newsblend-aggregator/internal/logger"
	"github.com/newsblend-hq/newsblend-aggregator/internal/storage"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/providers"
	"github.com/newsblend-hq/newsblend-aggregator/pkg/publishers"
)

// Refresher is the aggregation runtime. It periodically pulls the freshest
// articles through the aggregation service, enriches placeholder metadata,
// and publishes previously unseen articles downstream.
type Refresher struct {
	cfg             *config.Config
	service         *aggregator.Service
	scraper         *enrich.Scraper
	fanout          *publishers.Fanout
	ledger          storage.Ledger
	refreshInterval time.Duration
	log             logger.Logger
}

// NewRefresher builds the runtime from config files.
func NewRefresher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Refresher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	providerReg, err := providers.LoadRegistry(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("load providers registry: %w", err)
	}
	descriptors := providerReg.All()
	providerIDs := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		providerIDs = append(providerIDs, d.ID)
	}
	log.InfoObj("providers registry loaded", "providers_meta", map[string]any{
		"count": len(providerIDs),
		"ids":   providerIDs,
	})

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	service, err := aggregator.NewService(descriptors, providers.DefaultFetcherRegistry(), client, log)
	if err != nil {
		return nil, fmt.Errorf("build aggregation service: %w", err)
	}
	log.InfoObj("aggregation service ready", "active_providers", service.ActiveProviders())

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	ledgerOpts := storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	ledger, err := storage.NewLedger(cfg.StorageType, cfg.BBoltPath, ledgerOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("published ledger initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	var scraper *enrich.Scraper
	if cfg.ScrapeEnabled {
		scraper = enrich.NewScraper(client, cfg.ScrapeDelay, log)
	}

	return &Refresher{
		cfg:             cfg,
		service:         service,
		scraper:         scraper,
		fanout:          fanout,
		ledger:          ledger,
		refreshInterval: cfg.RefreshInterval,
		log:             log,
	}, nil
}

// Service exposes the aggregation service for callers embedding the runtime.
func (r *Refresher) Service() *aggregator.Service {
	if r == nil {
		return nil
	}
	return r.service
}

// Run starts the refresh loop until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("refresher is not initialized")
	}
	defer r.closeLedger()

	r.log.InfoObj("refresher loop starting", "refresher_state", map[string]any{
		"providers_count":  len(r.service.ActiveProviders()),
		"publishers_count": r.fanout.Size(),
		"refresh_interval": r.refreshInterval.String(),
	})

	if err := r.refreshOnce(ctx); err != nil {
		r.log.ErrorObj("initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("refresher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.refreshOnce(ctx); err != nil {
				r.log.ErrorObj("scheduled refresh failed", "error", err)
			}
		}
	}
}

// refreshOnce performs one aggregate fetch and publishes unseen articles.
func (r *Refresher) refreshOnce(ctx context.Context) error {
	start := time.Now()

	result := r.service.FetchArticles(ctx, domain.FetchParams{
		PageSize: r.cfg.RefreshPageSize,
		SortBy:   domain.SortPublishedAt,
	})

	fresh, err := r.unpublished(result.Articles)
	if err != nil {
		return fmt.Errorf("check published ledger: %w", err)
	}

	if len(fresh) == 0 {
		r.log.InfoObj("refresh completed, nothing new", "refresh_meta", map[string]any{
			"fetched_count": len(result.Articles),
			"elapsed_ms":    time.Since(start).Milliseconds(),
		})
		return nil
	}

	if r.scraper != nil {
		fresh = r.scraper.Enrich(ctx, fresh)
	}

	published := 0
	for _, article := range fresh {
		delivered, err := r.fanout.Publish(ctx, publishers.NewEvent(article))
		if err != nil {
			r.log.WarnObj("event publish partially failed", "publish_error", map[string]any{
				"article_id": article.ID,
				"delivered":  delivered,
				"error":      err.Error(),
			})
		}
		if delivered == 0 {
			continue
		}
		if err := r.ledger.MarkPublished(article.ID); err != nil {
			r.log.WarnObj("ledger mark failed", "ledger_error", map[string]any{
				"article_id": article.ID,
				"error":      err.Error(),
			})
		}
		published++
	}

	r.log.InfoObj("refresh completed", "refresh_meta", map[string]any{
		"fetched_count":   len(result.Articles),
		"fresh_count":     len(fresh),
		"published_count": published,
		"elapsed_ms":      time.Since(start).Milliseconds(),
	})
	return nil
}

// unpublished filters articles the ledger has already seen.
func (r *Refresher) unpublished(articles []domain.Article) ([]domain.Article, error) {
	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		seen, err := r.ledger.Published(article.ID)
		if err != nil {
			return nil, err
		}
		if !seen {
			out = append(out, article)
		}
	}
	return out, nil
}

// closeLedger safely closes the ledger backend, logging any errors encountered.
func (r *Refresher) closeLedger() {
	if r == nil || r.ledger == nil {
		return
	}
	if err := r.ledger.Close(); err != nil {
		r.log.ErrorObj("ledger close failed", "error", err)
	}
}
