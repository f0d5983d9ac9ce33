// README: Session-scoped immutable view over client plan lookups.
package ratetable

import (
	"context"
	"sync"

	"freightdesk/internal/types"
)

type Lookuper interface {
	Lookup(ctx context.Context, clientID types.ID) (*RateTable, error)
}

// Snapshot memoizes the first successful lookup per client, so an open delivery form
// keeps rating against the table it started with even if an administrator edits it.
// Failed lookups are not memoized.
type Snapshot struct {
	src    Lookuper
	mu     sync.Mutex
	tables map[types.ID]*RateTable
}

func NewSnapshot(src Lookuper) *Snapshot {
	return &Snapshot{src: src, tables: make(map[types.ID]*RateTable)}
}

func (s *Snapshot) Lookup(ctx context.Context, clientID types.ID) (*RateTable, error) {
	s.mu.Lock()
	t, ok := s.tables[clientID]
	s.mu.Unlock()
	if ok {
		return t, nil
	}

	t, err := s.src.Lookup(ctx, clientID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent lookup may have won; keep the first one.
	if existing, ok := s.tables[clientID]; ok {
		return existing, nil
	}
	s.tables[clientID] = t
	return t, nil
}
