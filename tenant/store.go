package tenant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store looks up tenant settings.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Lookup: an unknown tenant returns (Settings{}, false, nil). A non-nil
//   error means the store itself failed.
type Store interface {
	FindByTenantID(ctx context.Context, tenantID string) (Settings, bool, error)
}

// StoreFunc adapts an ordinary function to the Store interface.
type StoreFunc func(ctx context.Context, tenantID string) (Settings, bool, error)

// FindByTenantID calls f.
func (f StoreFunc) FindByTenantID(ctx context.Context, tenantID string) (Settings, bool, error) {
	return f(ctx, tenantID)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	settings map[string]Settings
}

// NewMemoryStore creates a store seeded with initial. Every entry is
// validated.
func NewMemoryStore(initial map[string]Settings) (*MemoryStore, error) {
	s := &MemoryStore{settings: make(map[string]Settings, len(initial))}
	for id, settings := range initial {
		if err := s.Put(id, settings); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewDefaultStore creates a store holding Defaults().
func NewDefaultStore() *MemoryStore {
	s, err := NewMemoryStore(Defaults())
	if err != nil {
		// Defaults are static and valid.
		panic(err)
	}
	return s
}

// FindByTenantID returns the settings for tenantID.
func (s *MemoryStore) FindByTenantID(_ context.Context, tenantID string) (Settings, bool, error) {
	s.mu.RLock()
	settings, ok := s.settings[tenantID]
	s.mu.RUnlock()
	return settings, ok, nil
}

// Put adds or replaces the settings for tenantID.
func (s *MemoryStore) Put(tenantID string, settings Settings) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrInvalidTenantID
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("tenant %q: %w", tenantID, err)
	}

	s.mu.Lock()
	s.settings[tenantID] = settings
	s.mu.Unlock()
	return nil
}

// Delete removes tenantID. Idempotent.
func (s *MemoryStore) Delete(tenantID string) {
	s.mu.Lock()
	delete(s.settings, tenantID)
	s.mu.Unlock()
}

// IDs returns the known tenant ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.settings))
	for id := range s.settings {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = StoreFunc(nil)
)
