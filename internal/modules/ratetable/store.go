// README: Rate table store backed by PostgreSQL (rate_tables + clients).
package ratetable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freightdesk/internal/types"
)

var ErrNoTableAssigned = errors.New("client has no rate table assigned")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ClientTableID returns the price table id assigned to the client.
func (s *Store) ClientTableID(ctx context.Context, clientID types.ID) (types.ID, error) {
	var tableID *string
	err := s.db.QueryRow(ctx, `
		SELECT price_table_id FROM clients WHERE id = $1`, string(clientID),
	).Scan(&tableID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoTableAssigned
	}
	if err != nil {
		return "", err
	}
	if tableID == nil || *tableID == "" {
		return "", ErrNoTableAssigned
	}
	return types.ID(*tableID), nil
}

// Get loads a table in whatever shape it was stored. Callers normalize.
func (s *Store) Get(ctx context.Context, id types.ID) (*RateTable, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''),
			   minimum_rates, excess_weight_rates, door_to_door, insurance,
			   discount_percent, multiplier, legacy
		FROM rate_tables
		WHERE id = $1`, string(id),
	)

	var t RateTable
	var minimum, excess, d2d, insurance, legacy []byte
	var discount *float64
	err := row.Scan(
		&t.ID, &t.Name, &t.Description,
		&minimum, &excess, &d2d, &insurance,
		&discount, &t.Multiplier, &legacy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if discount != nil {
		t.DiscountPercent = *discount
	}

	if err := unmarshalIfPresent(minimum, &t.MinimumRate); err != nil {
		return nil, fmt.Errorf("rate table %s minimum_rates: %w", id, err)
	}
	if err := unmarshalIfPresent(excess, &t.ExcessWeightRate); err != nil {
		return nil, fmt.Errorf("rate table %s excess_weight_rates: %w", id, err)
	}
	if len(d2d) > 0 {
		t.DoorToDoor = &DoorToDoor{}
		if err := json.Unmarshal(d2d, t.DoorToDoor); err != nil {
			return nil, fmt.Errorf("rate table %s door_to_door: %w", id, err)
		}
	}
	if len(insurance) > 0 {
		t.Insurance = &Insurance{}
		if err := json.Unmarshal(insurance, t.Insurance); err != nil {
			return nil, fmt.Errorf("rate table %s insurance: %w", id, err)
		}
	}
	if len(legacy) > 0 {
		t.Legacy = &LegacyRates{}
		if err := json.Unmarshal(legacy, t.Legacy); err != nil {
			return nil, fmt.Errorf("rate table %s legacy: %w", id, err)
		}
	}
	return &t, nil
}

func unmarshalIfPresent(raw []byte, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
