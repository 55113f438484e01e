package localstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// MemoryStore is an in-memory Store for tests and throwaway sessions. It
// mirrors SQLiteStore semantics including the last-write-wins save guard.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]*model.Draft

	// FailWith, when set, makes every call return the given error. Tests use
	// it to simulate a broken storage engine.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[string]*model.Draft{}}
}

func (s *MemoryStore) List(ctx context.Context) ([]*model.Draft, error) {
	return s.list(false)
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]*model.Draft, error) {
	return s.list(true)
}

func (s *MemoryStore) list(includeTombstones bool) ([]*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []*model.Draft
	for _, d := range s.drafts {
		if !includeTombstones && d.IsTombstone() {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, draftID string) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	d, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, d *model.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if existing, ok := s.drafts[d.DraftID]; ok && !d.NewerThan(existing) {
		return nil
	}
	cp := *d
	s.drafts[d.DraftID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, draftID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	d, ok := s.drafts[draftID]
	if !ok || !at.After(d.LastUpdated) {
		return nil
	}
	cp := *d
	cp.DeletedAt = &at
	cp.LastUpdated = at
	s.drafts[draftID] = &cp
	return nil
}

func (s *MemoryStore) Purge(ctx context.Context, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.drafts, draftID)
	return nil
}

func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.drafts = map[string]*model.Draft{}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
