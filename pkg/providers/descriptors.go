package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package providers contains the provider descriptor registry (YAML/JSON)
// and the adapters that translate each external news API into the canonical
// article contract.

// RateLimitHints carries advisory per-provider request budgets. The
// aggregation core records them for introspection but does not enforce them.
type RateLimitHints struct {
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
	RequestsPerHour   int `json:"requests_per_hour" yaml:"requests_per_hour"`
}

// Descriptor identifies one external news source and its access parameters.
// Descriptors are loaded once at startup and immutable thereafter.
type Descriptor struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Kind      string         `json:"kind" yaml:"kind"`
	BaseURL   string         `json:"base_url" yaml:"base_url"`
	APIKey    string         `json:"api_key" yaml:"api_key"`
	Enabled   *bool          `json:"enabled" yaml:"enabled"`
	Priority  int            `json:"priority" yaml:"priority"`
	RateLimit RateLimitHints `json:"rate_limit" yaml:"rate_limit"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (d Descriptor) EnabledValue() bool {
	if d.Enabled == nil {
		return true
	}
	return *d.Enabled
}

type descriptorFile struct {
	Providers []Descriptor `json:"providers" yaml:"providers"`
}

// Registry materializes provider descriptors loaded from a config file.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
	idx         map[string]Descriptor
}

// LoadRegistry loads the provider registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("providers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open providers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	parsed, err := parseDescriptorFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Providers) == 0 {
		return nil, errors.New("providers file contains no provider entries")
	}

	reg := &Registry{
		descriptors: make([]Descriptor, len(parsed.Providers)),
		idx:         make(map[string]Descriptor, len(parsed.Providers)),
	}

	for i := range parsed.Providers {
		d := sanitizeDescriptor(parsed.Providers[i])
		if err := validateDescriptor(d); err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[d.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", d.ID)
		}
		reg.descriptors[i] = d
		reg.idx[d.ID] = d
	}

	return reg, nil
}

func parseDescriptorFile(data []byte, ext string) (descriptorFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var parsed descriptorFile
		if err := d.fn(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	return descriptorFile{}, errors.New("providers file format not recognized (expected YAML or JSON)")
}

func sanitizeDescriptor(d Descriptor) Descriptor {
	d.ID = strings.TrimSpace(d.ID)
	d.Name = strings.TrimSpace(d.Name)
	d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
	d.BaseURL = strings.TrimRight(strings.TrimSpace(d.BaseURL), "/")
	d.APIKey = strings.TrimSpace(d.APIKey)

	if d.Enabled == nil {
		def := true
		d.Enabled = &def
	}
	return d
}

func validateDescriptor(d Descriptor) error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.Name == "" {
		return fmt.Errorf("name is required for provider %q", d.ID)
	}
	// Kind stays optional: dispatch falls back to the provider name.
	if d.Priority < 0 {
		return fmt.Errorf("priority must be non-negative for provider %q", d.ID)
	}
	return nil
}

// ByID returns the descriptor for the given id, if loaded.
func (r *Registry) ByID(id string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Descriptor{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.idx[id]
	return d, ok
}

// All returns a copy of every loaded descriptor in file order.
func (r *Registry) All() []Descriptor {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Enabled returns the enabled descriptors sorted by descending priority.
// Ties keep file order, which makes priority order deterministic.
func (r *Registry) Enabled() []Descriptor {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Descriptor, 0, len(all))
	for _, d := range all {
		if d.EnabledValue() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}
