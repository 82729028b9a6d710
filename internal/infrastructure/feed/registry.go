package feed

import (
	"fmt"
	"sort"
	"strings"

	"InsightStream/internal/ports"
)

const (
	// ModeSimulated emits canned items without network access.
	ModeSimulated = "simulated"
	// ModeRSS polls the subscription URLs.
	ModeRSS = "rss"
)

// Registry keeps a mapping from feed modes to their implementations.
type Registry struct {
	sources map[string]ports.FeedSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.FeedSource{}}
}

// Register adds or replaces the source for mode.
func (r *Registry) Register(mode string, source ports.FeedSource) {
	if r.sources == nil {
		r.sources = map[string]ports.FeedSource{}
	}
	r.sources[strings.ToLower(mode)] = source
}

// Resolve returns the source for mode; an empty mode means simulated.
func (r *Registry) Resolve(mode string) (ports.FeedSource, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeSimulated
	}
	if source, ok := r.sources[mode]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("feed mode %q is not registered (known: %s)", mode, strings.Join(r.modes(), ", "))
}

func (r *Registry) modes() []string {
	out := make([]string, 0, len(r.sources))
	for mode := range r.sources {
		out = append(out, mode)
	}
	sort.Strings(out)
	return out
}
