// README: Freight calculator: plan lookup + rate resolver + basic fallback.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

var tracer = otel.Tracer("freightdesk/internal/modules/pricing")

// PlanLookup resolves a client to its rate table. ratetable.ErrNoTableAssigned
// means the client has no usable plan.
type PlanLookup interface {
	Lookup(ctx context.Context, clientID types.ID) (*ratetable.RateTable, error)
}

// CityLookup resolves a city's distance. ok is false when the city is unknown
// or has no distance on record.
type CityLookup interface {
	DistanceKm(ctx context.Context, cityID types.ID) (km float64, ok bool, err error)
}

type Deps struct {
	Plans  PlanLookup
	Cities CityLookup
	Logger *zap.Logger
	Meter  metric.Meter
}

type Service struct {
	plans     PlanLookup
	cities    CityLookup
	logger    *zap.Logger
	fallbacks metric.Int64Counter
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter("freightdesk/pricing")
	}
	fallbacks, err := meter.Int64Counter(
		"freight.quote.fallbacks",
		metric.WithDescription("Quotes priced with the basic fallback rate"),
	)
	if err != nil {
		logger.Warn("pricing: unable to register fallback counter", zap.Error(err))
		fallbacks = nil
	}
	return &Service{plans: deps.Plans, cities: deps.Cities, logger: logger, fallbacks: fallbacks}
}

// WithPlans returns a copy of the service that resolves tables through plans.
// Reconciliation sessions use it to rate against a per-session snapshot.
func (s *Service) WithPlans(plans PlanLookup) *Service {
	cp := *s
	cp.plans = plans
	return &cp
}

// Calculate prices req for the client. Only ErrInvalidRatingInput is returned as an
// error; lookup problems are absorbed into Quote.Warning and a fallback amount, so a
// valid delivery always gets a price.
func (s *Service) Calculate(ctx context.Context, clientID types.ID, req RatingRequest) (Quote, error) {
	ctx, span := tracer.Start(ctx, "pricing.Calculate", trace.WithAttributes(
		attribute.String("client.id", clientID.String()),
		attribute.String("freight.service_category", string(req.ServiceCategory)),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return Quote{}, err
	}
	if req.CargoCategory == "" {
		req.CargoCategory = CargoStandard
	}

	var quote Quote
	amount := types.Money{}

	table, warn := s.resolveTable(ctx, clientID)
	quote.Warning = warn
	if table != nil {
		var distWarn error
		req, distWarn = s.resolveDistance(ctx, req)
		quote.Warning = errors.Join(quote.Warning, distWarn)

		normalized := ratetable.Normalize(*table)
		amount = Rate(&normalized, req)
	}

	if !amount.IsPositive() {
		amount = BasicFallbackRate(req.WeightKg, req.CargoCategory)
		quote.Fallback = true
		if s.fallbacks != nil {
			s.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("freight.table_missing", table == nil)))
		}
		s.logger.Info("freight priced with basic fallback rate",
			zap.String("client_id", clientID.String()),
			zap.String("service_category", string(req.ServiceCategory)),
			zap.Float64("weight_kg", req.WeightKg),
			zap.String("amount", amount.StringFixed(2)),
		)
	}

	quote.Amount = types.Cents(amount)
	span.SetAttributes(
		attribute.String("freight.amount", quote.Amount.StringFixed(2)),
		attribute.Bool("freight.fallback", quote.Fallback),
	)
	return quote, nil
}

func (s *Service) resolveTable(ctx context.Context, clientID types.ID) (*ratetable.RateTable, error) {
	if clientID.Empty() || s.plans == nil {
		return nil, ErrNoRateTableAssigned
	}
	table, err := s.plans.Lookup(ctx, clientID)
	switch {
	case errors.Is(err, ratetable.ErrNoTableAssigned):
		return nil, ErrNoRateTableAssigned
	case err != nil:
		s.logger.Warn("rate table lookup failed", zap.String("client_id", clientID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: rate table for client %s: %v", ErrLookupFailure, clientID, err)
	case table == nil:
		return nil, ErrNoRateTableAssigned
	}
	return table, nil
}

// resolveDistance fills the city distance for door-to-door interior service when the
// caller supplied only a city id. Failures leave the distance empty.
func (s *Service) resolveDistance(ctx context.Context, req RatingRequest) (RatingRequest, error) {
	if req.ServiceCategory != ratetable.ServiceDoorToDoorInterior || req.CityDistanceKm != nil {
		return req, nil
	}
	if req.CityID.Empty() || s.cities == nil {
		return req, nil
	}
	km, ok, err := s.cities.DistanceKm(ctx, req.CityID)
	if err != nil {
		s.logger.Warn("city distance lookup failed", zap.String("city_id", req.CityID.String()), zap.Error(err))
		return req, fmt.Errorf("%w: city %s: %v", ErrLookupFailure, req.CityID, err)
	}
	if ok && finiteNonNegative(km) {
		req.CityDistanceKm = &km
	}
	return req, nil
}
