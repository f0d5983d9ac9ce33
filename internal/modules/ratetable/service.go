// README: Client plan lookup: client -> assigned, normalized rate table.
package ratetable

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"freightdesk/internal/types"
)

// TableSource is the persistent side of the lookup (Store in production).
type TableSource interface {
	ClientTableID(ctx context.Context, clientID types.ID) (types.ID, error)
	Get(ctx context.Context, id types.ID) (*RateTable, error)
}

// TableCache holds normalized tables (Cache in production). Optional.
type TableCache interface {
	Get(ctx context.Context, id types.ID) (*RateTable, bool, error)
	Set(ctx context.Context, t *RateTable) error
	Invalidate(ctx context.Context, id types.ID) error
}

type Service struct {
	source TableSource
	cache  TableCache
	logger *zap.Logger
}

func NewService(source TableSource, cache TableCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, cache: cache, logger: logger}
}

// Lookup resolves the client's rate table. A client without a usable table yields
// ErrNoTableAssigned; any other error is an I/O failure. Tables are normalized here,
// once, so nothing downstream sees the legacy shape.
func (s *Service) Lookup(ctx context.Context, clientID types.ID) (*RateTable, error) {
	tableID, err := s.source.ClientTableID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		t, ok, err := s.cache.Get(ctx, tableID)
		if err != nil {
			s.logger.Warn("rate table cache read failed", zap.String("table_id", tableID.String()), zap.Error(err))
		} else if ok {
			return t, nil
		}
	}

	raw, err := s.source.Get(ctx, tableID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("client references missing rate table",
			zap.String("client_id", clientID.String()), zap.String("table_id", tableID.String()))
		return nil, ErrNoTableAssigned
	}
	if err != nil {
		return nil, err
	}

	t := Normalize(*raw)
	if s.cache != nil {
		if err := s.cache.Set(ctx, &t); err != nil {
			s.logger.Warn("rate table cache write failed", zap.String("table_id", tableID.String()), zap.Error(err))
		}
	}
	return &t, nil
}

// Invalidate drops a cached table so the next lookup reads the edited version.
// Sessions that already hold a snapshot keep rating against it.
func (s *Service) Invalidate(ctx context.Context, tableID types.ID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, tableID)
}
