// Package registry holds the catalog of known downloadable models.
package registry

import (
	"fmt"
	"strings"
)

// Entry describes a model the host can offer for download.
type Entry struct {
	ID           string `json:"id" yaml:"id" toml:"id"`
	Name         string `json:"name" yaml:"name" toml:"name"`
	Size         string `json:"size,omitempty" yaml:"size" toml:"size"`
	Quantization string `json:"quantization,omitempty" yaml:"quantization" toml:"quantization"`
	FileName     string `json:"file_name" yaml:"file_name" toml:"file_name"`
	URL          string `json:"url" yaml:"url" toml:"url"`
}

// Registry is an immutable, ordered set of catalog entries keyed by ID.
type Registry struct {
	entries []Entry
	byID    map[string]int
}

// Default returns the built-in catalog used when configuration names none.
func Default() []Entry {
	return []Entry{
		{
			ID:           "tiny-garden-270m",
			Name:         "TinyGarden-270M (CPU)",
			Size:         "270MB",
			Quantization: "INT4",
			FileName:     "tiny_garden.litertlm",
			URL:          "https://storage.googleapis.com/mediapipe-models/llm_inference/gemma_2b_en/float16/1/gemma_2b_en.bin",
		},
	}
}

// New validates entries and builds a Registry. IDs must be unique and every
// entry needs a file name; Name defaults to ID.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{byID: make(map[string]int, len(entries))}
	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if strings.TrimSpace(e.FileName) == "" {
			return nil, fmt.Errorf("catalog entry %q: file_name is required", e.ID)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", e.ID)
		}
		if e.Name == "" {
			e.Name = e.ID
		}
		r.byID[e.ID] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Entries returns a copy of the catalog in configuration order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup finds an entry by ID.
func (r *Registry) Lookup(id string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	i, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}
