// README: Delivery store backed by PostgreSQL.
package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

func (s *Store) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, minute_number, client_id, service_category, cargo_category,
			   weight_kg, declared_value, city_id, additional_charges,
			   has_collection, has_delivery, receiver_name, notes,
			   total_freight, created_at, updated_at
		FROM deliveries
		WHERE id = $1`, string(id),
	)

	var r Record
	var cityID *string
	err := row.Scan(
		&r.ID, &r.MinuteNumber, &r.ClientID, &r.ServiceCategory, &r.CargoCategory,
		&r.WeightKg, &r.DeclaredValue, &cityID, &r.AdditionalCharges,
		&r.HasCollection, &r.HasDelivery, &r.ReceiverName, &r.Notes,
		&r.TotalFreight, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cityID != nil {
		r.CityID = types.ID(*cityID)
	}
	return &r, nil
}

// Save inserts or updates r. New records get a UUID; timestamps are set from the row.
func (s *Store) Save(ctx context.Context, r *Record) error {
	if r.ID.Empty() {
		r.ID = types.ID(uuid.NewString())
	}
	charges := r.AdditionalCharges
	if charges == nil {
		charges = []float64{}
	}
	var cityID *string
	if !r.CityID.Empty() {
		v := string(r.CityID)
		cityID = &v
	}

	return s.db.QueryRow(ctx, `
		INSERT INTO deliveries (
			id, minute_number, client_id, service_category, cargo_category,
			weight_kg, declared_value, city_id, additional_charges,
			has_collection, has_delivery, receiver_name, notes, total_freight
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14
		)
		ON CONFLICT (id) DO UPDATE SET
			minute_number = EXCLUDED.minute_number,
			client_id = EXCLUDED.client_id,
			service_category = EXCLUDED.service_category,
			cargo_category = EXCLUDED.cargo_category,
			weight_kg = EXCLUDED.weight_kg,
			declared_value = EXCLUDED.declared_value,
			city_id = EXCLUDED.city_id,
			additional_charges = EXCLUDED.additional_charges,
			has_collection = EXCLUDED.has_collection,
			has_delivery = EXCLUDED.has_delivery,
			receiver_name = EXCLUDED.receiver_name,
			notes = EXCLUDED.notes,
			total_freight = EXCLUDED.total_freight,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		string(r.ID),
		r.MinuteNumber,
		string(r.ClientID),
		string(r.ServiceCategory),
		string(r.CargoCategory),
		r.WeightKg,
		r.DeclaredValue,
		cityID,
		charges,
		r.HasCollection,
		r.HasDelivery,
		r.ReceiverName,
		r.Notes,
		r.TotalFreight,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (s *Store) ExistsMinute(ctx context.Context, minute string, clientID, excludeID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM deliveries
			WHERE minute_number = $1
			  AND client_id = $2
			  AND ($3 = '' OR id <> $3)
		)`, minute, string(clientID), string(excludeID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
