// Package store holds the authoritative in-memory item collection.
//
// ItemStore is the single owner of mutation: Append prepends a batch and
// Patch attaches an analysis. Readers take snapshots and never observe a
// partially inserted batch.
package store

import (
	"errors"
	"fmt"
	"sync"

	"InsightStream/internal/domain"
)

var (
	// ErrDuplicateID is returned when a batch carries an id already present.
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrUnknownID is returned when patching an id that is not in the collection.
	ErrUnknownID = errors.New("unknown item id")
)

// ItemStore keeps items in insertion-recency order.
//
// Internally items are kept oldest-first so positions never shift on
// prepend, which lets Patch resolve ids through the index in O(1).
type ItemStore struct {
	mu    sync.RWMutex
	rev   []domain.Item
	index map[string]int
}

// New builds a store from a newest-first collection.
func New(initial []domain.Item) (*ItemStore, error) {
	s := &ItemStore{index: make(map[string]int, len(initial))}
	if err := s.Append(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Append prepends the batch as a unit, keeping the batch's own order.
// The whole batch is rejected if any id collides.
func (s *ItemStore) Append(batch []domain.Item) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(batch))
	for _, item := range batch {
		if item.ID == "" {
			return fmt.Errorf("append: %w: empty id", ErrDuplicateID)
		}
		if _, ok := s.index[item.ID]; ok {
			return fmt.Errorf("append %s: %w", item.ID, ErrDuplicateID)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("append %s: %w", item.ID, ErrDuplicateID)
		}
		seen[item.ID] = struct{}{}
	}

	for i := len(batch) - 1; i >= 0; i-- {
		s.index[batch[i].ID] = len(s.rev)
		s.rev = append(s.rev, batch[i])
	}
	return nil
}

// Patch attaches the analysis to the item with the given id.
// An already analyzed item is returned unchanged.
func (s *ItemStore) Patch(id string, analysis domain.Analysis) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return domain.Item{}, fmt.Errorf("patch %s: %w", id, ErrUnknownID)
	}
	current := s.rev[pos]
	if current.Analyzed {
		return current, nil
	}
	patched := current.WithAnalysis(analysis)
	s.rev[pos] = patched
	return patched, nil
}

// Get returns the current version of an item.
func (s *ItemStore) Get(id string) (domain.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return domain.Item{}, false
	}
	return s.rev[pos], true
}

// Has reports whether the id is present.
func (s *ItemStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Len returns the collection size.
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rev)
}

// Snapshot returns the collection newest-first. The slice is owned by the caller.
func (s *ItemStore) Snapshot() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, len(s.rev))
	for i, item := range s.rev {
		out[len(s.rev)-1-i] = item
	}
	return out
}
