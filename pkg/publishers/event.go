package publishers

import (
	"time"

	"github.com/newsblend-hq/newsblend-aggregator/internal/domain"
)

// Event is the payload published downstream for each freshly aggregated article.
type Event struct {
	SourceID    string         `json:"source_id"`
	SourceName  string         `json:"source_name"`
	Article     domain.Article `json:"article"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent constructs an Event for the given article.
func NewEvent(article domain.Article) Event {
	return Event{
		SourceID:    article.Source.ID,
		SourceName:  article.Source.Name,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}
