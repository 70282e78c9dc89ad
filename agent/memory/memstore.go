package memory

import (
	"context"
	"reflect"
	"sync"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

type entryKey struct {
	scope    string
	category contractx.Category
	key      string
}

// MemStore is the in-process Store used by tests and dev runs. A single mutex
// is the serialization point for same-key writers; list mutations happen
// entirely under it, which makes them atomic at the store boundary.
type MemStore struct {
	mu      sync.RWMutex
	entries map[entryKey]*Entry
	now     func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[entryKey]*Entry),
		now:     time.Now,
	}
}

func (s *MemStore) Get(ctx context.Context, scope string, category contractx.Category, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryKey{scope: scope, category: category, key: key}]
	if !ok {
		return nil, ErrEntryNotFound
	}
	clone := *entry
	return &clone, nil
}

func (s *MemStore) Put(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	clone.UpdatedAt = s.now().UTC()
	s.entries[entryKey{scope: entry.Scope, category: entry.Category, key: entry.Key}] = &clone
	return nil
}

func (s *MemStore) Delete(ctx context.Context, scope string, category contractx.Category, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entryKey{scope: scope, category: category, key: key})
	return nil
}

func (s *MemStore) DeleteCategory(ctx context.Context, scope string, category contractx.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		if k.scope == scope && k.category == category {
			delete(s.entries, k)
		}
	}
	return nil
}

func (s *MemStore) AppendList(ctx context.Context, entry *Entry, item any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{scope: entry.Scope, category: entry.Category, key: entry.Key}
	existing, ok := s.entries[k]
	if !ok {
		clone := *entry
		clone.Value = []any{item}
		clone.UpdatedAt = s.now().UTC()
		s.entries[k] = &clone
		return nil
	}

	list, ok := existing.Value.([]any)
	if !ok {
		return ErrNotAList
	}
	existing.Value = append(list, item)
	existing.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemStore) RemoveList(ctx context.Context, scope string, category contractx.Category, key string, item any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{scope: scope, category: category, key: key}
	existing, ok := s.entries[k]
	if !ok {
		return nil
	}
	list, ok := existing.Value.([]any)
	if !ok {
		return ErrNotAList
	}
	for i, candidate := range list {
		if reflect.DeepEqual(candidate, item) {
			existing.Value = append(append([]any{}, list[:i]...), list[i+1:]...)
			existing.UpdatedAt = s.now().UTC()
			return nil
		}
	}
	return nil
}

func (s *MemStore) Scan(ctx context.Context, organizationID string, category contractx.Category, groupingKey string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, entry := range s.entries {
		if entry.OrganizationID != organizationID || entry.Category != category {
			continue
		}
		if groupingKey != "" && entry.GroupingKey != groupingKey {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}
