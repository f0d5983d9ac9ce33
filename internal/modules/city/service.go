// README: City distance lookup with on-demand routing fallback.
package city

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"freightdesk/internal/types"
)

type Repository interface {
	Get(ctx context.Context, id types.ID) (*City, error)
	UpdateDistance(ctx context.Context, id types.ID, km float64) error
}

// Router measures road distance between two addresses (maps.DistanceService).
type Router interface {
	DistanceKm(ctx context.Context, origin, destination string) (float64, error)
}

type Service struct {
	repo   Repository
	router Router
	origin string
	logger *zap.Logger
}

// NewService wires the city lookup. router may be nil, in which case cities without a
// stored distance stay without one.
func NewService(repo Repository, router Router, origin string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, router: router, origin: origin, logger: logger}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*City, error) {
	return s.repo.Get(ctx, id)
}

// DistanceKm returns the city's distance from the depot. ok is false for unknown
// cities and for cities whose distance is neither stored nor measurable.
func (s *Service) DistanceKm(ctx context.Context, id types.ID) (float64, bool, error) {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if c.DistanceKm != nil {
		return *c.DistanceKm, true, nil
	}
	if s.router == nil || s.origin == "" {
		return 0, false, nil
	}

	km, err := s.router.DistanceKm(ctx, s.origin, c.Address())
	if err != nil {
		return 0, false, err
	}
	km = math.Round(km*100) / 100
	if err := s.repo.UpdateDistance(ctx, id, km); err != nil {
		s.logger.Warn("city distance not persisted", zap.String("city_id", id.String()), zap.Error(err))
	}
	return km, true, nil
}
