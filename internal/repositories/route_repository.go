package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

// FareForBus resolves the pricing of the route a bus runs on. The found
// flag is false when the bus has no route row; the caller decides whether
// to fall back to default pricing.
func (r RouteRepository) FareForBus(ctx context.Context, busID string) (models.FareConfig, bool, error) {
	var base, perKm string
	err := r.DB.QueryRowContext(ctx,
		`SELECT rt.base_fare, rt.fare_per_km
		 FROM buses b JOIN routes rt ON rt.id = b.route_id
		 WHERE b.id = ?`,
		busID,
	).Scan(&base, &perKm)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FareConfig{}, false, nil
	}
	if err != nil {
		return models.FareConfig{}, false, domain.InternalError{Msg: "route fare lookup failed", Err: err}
	}

	cfg := models.FareConfig{}
	if cfg.BaseFare, err = decimal.NewFromString(base); err != nil {
		return models.FareConfig{}, false, domain.InternalError{Msg: "bad base fare value", Err: err}
	}
	if cfg.FarePerKm, err = decimal.NewFromString(perKm); err != nil {
		return models.FareConfig{}, false, domain.InternalError{Msg: "bad per-km fare value", Err: err}
	}
	return cfg, true, nil
}

func (r RouteRepository) BusByID(ctx context.Context, busID string) (*models.Bus, error) {
	var b models.Bus
	var routeID sql.NullString
	var supervisor sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, bus_number, route_id, capacity, supervisor_id FROM buses WHERE id = ?`,
		busID,
	).Scan(&b.ID, &b.BusNumber, &routeID, &b.Capacity, &supervisor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError{Resource: "bus", Code: domain.CodeBusNotFound}
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "bus lookup failed", Err: err}
	}
	// A bus can be provisioned before it is assigned a route; callers fall
	// back to default pricing when RouteID is empty.
	if routeID.Valid {
		b.RouteID = routeID.String
	}
	if supervisor.Valid {
		b.SupervisorID = supervisor.Int64
	}
	return &b, nil
}
