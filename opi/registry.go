package opi

import (
	"sort"
	"strings"
	"sync"

	"github.com/brc20x/indexer/chainerr"
)

// Registry maps a case-insensitive op-tag to its Processor. Registration
// happens once at startup (spec.md §4.4); a duplicate tag fails startup
// rather than silently shadowing the earlier registration.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// Register adds a processor under tag. The tag is matched case-insensitively
// at lookup time. A second Register call for the same (case-folded) tag
// returns DuplicateProcessorRegistration.
func (r *Registry) Register(tag string, p Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(tag)
	if _, exists := r.processors[key]; exists {
		return chainerr.New(chainerr.DuplicateProcessorRegistration, "op-tag %q already registered", tag)
	}
	r.processors[key] = p
	return nil
}

// Lookup returns the processor registered for tag, if any.
func (r *Registry) Lookup(tag string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[strings.ToLower(tag)]
	return p, ok
}

// Tags returns every registered op-tag, sorted, for diagnostics.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.processors))
	for k := range r.processors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
