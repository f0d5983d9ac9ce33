// README: City store backed by PostgreSQL.
package city

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freightdesk/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id types.ID) (*City, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(state, ''), distance_km
		FROM cities
		WHERE id = $1`, string(id),
	)

	var c City
	err := row.Scan(&c.ID, &c.Name, &c.State, &c.DistanceKm)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateDistance stores a measured distance. It only fills an empty column, so a
// value entered by hand is never overwritten by a routing result.
func (s *Store) UpdateDistance(ctx context.Context, id types.ID, km float64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE cities
		SET distance_km = $1
		WHERE id = $2 AND distance_km IS NULL`,
		km, string(id),
	)
	return err
}
