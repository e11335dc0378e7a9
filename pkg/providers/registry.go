package providers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newsblend-hq/newsblend-aggregator/pkg/httpclient"
)

// Supported provider kinds. Dispatch is a closed enumeration populated at
// startup; an unrecognized kind is a construction-time error.
const (
	KindGuardian = "guardian"
	KindNYT      = "nyt"
	KindNewsAPI  = "newsapi"
)

// nytAliasName lets descriptors spell the kind out in full.
const nytAliasName = "new york times"

// Constructor builds a Fetcher for a descriptor.
type Constructor func(cfg Descriptor, client httpclient.Client) Fetcher

// fetcherRegistry maps normalized kind names to constructors.
type fetcherRegistry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewFetcherRegistry builds a registry from the given kind constructors.
func NewFetcherRegistry(constructors map[string]Constructor) FetcherRegistry {
	reg := &fetcherRegistry{constructors: make(map[string]Constructor)}
	for kind, ctor := range constructors {
		reg.register(kind, ctor)
	}
	return reg
}

func (r *fetcherRegistry) register(kind string, ctor Constructor) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || ctor == nil {
		return
	}

	r.mu.Lock()
	r.constructors[kind] = ctor
	r.mu.Unlock()
}

// FetcherFor constructs the adapter for the given descriptor, dispatching on
// the descriptor kind (falling back to its name for registries keyed the old
// way).
func (r *fetcherRegistry) FetcherFor(cfg Descriptor, client httpclient.Client) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, key := range []string{cfg.Kind, cfg.Name} {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if ctor, ok := r.constructors[key]; ok {
			return ctor(cfg, client), nil
		}
	}

	return nil, fmt.Errorf("unknown provider %q (kind %q)", cfg.Name, cfg.Kind)
}

// DefaultHTTPClient returns a tuned HTTP client for provider fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultFetcherRegistry wires up the known provider adapters.
func DefaultFetcherRegistry() FetcherRegistry {
	return NewFetcherRegistry(map[string]Constructor{
		KindGuardian: NewGuardianFetcher,
		KindNYT:      NewNYTFetcher,
		nytAliasName: NewNYTFetcher,
		KindNewsAPI:  NewNewsAPIFetcher,
	})
}
