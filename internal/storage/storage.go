package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage tracks which article ids have already been published
// downstream, so the refresher never emits the same article twice. Only ids
// and expiry stamps are stored, never article content.

// Ledger records published article ids.
type Ledger interface {
	Close() error
	Published(id string) (bool, error)
	MarkPublished(id string) error
}

// Options controls retention characteristics for concrete ledger implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewLedger creates the configured ledger backend.
func NewLedger(typ, path string, opts Options) (Ledger, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopLedger{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopLedger struct{}

func (noopLedger) Close() error                    { return nil }
func (noopLedger) Published(string) (bool, error)  { return false, nil }
func (noopLedger) MarkPublished(string) error      { return nil }
