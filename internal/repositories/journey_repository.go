package repositories

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/db"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

// JourneyRepository persists tap records and their closing ledger effects.
type JourneyRepository struct {
	DB *sql.DB
}

const journeyColumns = `id, card_id, bus_id, user_id, operator_id,
	tap_in_time, tap_in_lat, tap_in_lng,
	tap_out_time, tap_out_lat, tap_out_lng,
	fare, distance_km, co2_saved, points_earned,
	tap_in_offline_id, tap_out_offline_id`

// ActiveForCardBus returns the open journey for (card, bus), or nil when
// the rider is not tapped in on that bus.
func (r JourneyRepository) ActiveForCardBus(ctx context.Context, cardID, busID string) (*models.Journey, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+journeyColumns+` FROM journeys
		 WHERE card_id = ? AND bus_id = ? AND tap_out_time IS NULL
		 ORDER BY tap_in_time DESC LIMIT 1`,
		cardID, busID,
	)
	return scanJourney(row)
}

func (r JourneyRepository) FindByID(ctx context.Context, id int64) (*models.Journey, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+journeyColumns+` FROM journeys WHERE id = ?`, id)
	j, err := scanJourney(row)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.NotFoundError{Resource: "journey"}
	}
	return j, nil
}

// FindTapInByOfflineID returns the journey a tap-in offline id was applied
// to, or nil when the id is unseen.
func (r JourneyRepository) FindTapInByOfflineID(ctx context.Context, offlineID string) (*models.Journey, error) {
	return r.findByEvent(ctx, EventTapIn, offlineID)
}

// FindClosedByOfflineID returns the journey a tap-out offline id closed, or
// nil. An offline id attached to a still-open journey does not count: that
// models retry-before-success, and the retry must proceed.
func (r JourneyRepository) FindClosedByOfflineID(ctx context.Context, offlineID string) (*models.Journey, error) {
	return r.findByEvent(ctx, EventTapOut, offlineID)
}

func (r JourneyRepository) findByEvent(ctx context.Context, eventType, offlineID string) (*models.Journey, error) {
	refID, found, err := findOfflineEvent(ctx, r.DB, eventType, offlineID)
	if err != nil || !found {
		return nil, err
	}
	return r.FindByID(ctx, refID)
}

// CreateTapIn opens a journey and records its idempotency key in one
// transaction. The storage layer reports the two races as distinct
// conflicts: a concurrent open journey on (card, bus) fires
// uq_open_journey -> ALREADY_TAPPED_IN, a concurrent replay of the same
// offline id fires uq_offline_event -> DUPLICATE_EVENT.
func (r JourneyRepository) CreateTapIn(ctx context.Context, j *models.Journey) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		lat, lng := pointCols(j.TapInLocation)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO journeys
			 (card_id, bus_id, user_id, operator_id, tap_in_time, tap_in_lat, tap_in_lng, tap_in_offline_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			j.CardID, j.BusID, j.UserID, j.OperatorID, j.TapInTime, lat, lng, db.NullIfEmpty(j.TapInOfflineID),
		)
		if db.IsDuplicateKey(err, "uq_open_journey") {
			return domain.ConflictError{
				Resource: "journey",
				Code:     domain.CodeAlreadyTappedIn,
				Msg:      "card already tapped in on this bus",
				Err:      err,
			}
		}
		if err != nil {
			return domain.InternalError{Msg: "journey insert failed", Err: err}
		}
		id, err = res.LastInsertId()
		if err != nil {
			return domain.InternalError{Msg: "journey id unavailable", Err: err}
		}
		return insertOfflineEvent(ctx, tx, EventTapIn, j.TapInOfflineID, id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Close transitions a journey to Closed and applies its wallet and audit
// effects atomically. The conditional update consumes the TappedIn state:
// if another tap-out got there first, zero rows match and the caller sees
// NO_ACTIVE_JOURNEY rather than a double charge.
func (r JourneyRepository) Close(ctx context.Context, cl models.JourneyClose) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		lat, lng := pointCols(cl.TapOutLocation)
		res, err := tx.ExecContext(ctx,
			`UPDATE journeys
			 SET tap_out_time = ?, tap_out_lat = ?, tap_out_lng = ?,
			     fare = ?, distance_km = ?, co2_saved = ?, points_earned = ?,
			     tap_out_offline_id = ?
			 WHERE id = ? AND tap_out_time IS NULL`,
			cl.TapOutTime, lat, lng,
			cl.Fare, cl.DistanceKm, cl.CO2Saved, cl.PointsEarned,
			db.NullIfEmpty(cl.TapOutOfflineID),
			cl.JourneyID,
		)
		if err != nil {
			return domain.InternalError{Msg: "journey close failed", Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return domain.InternalError{Msg: "journey close result unavailable", Err: err}
		}
		if affected == 0 {
			return domain.NotFoundError{Resource: "active journey", Code: domain.CodeNoActiveJourney}
		}

		if err := applyWalletDelta(ctx, tx, models.WalletDelta{
			CardID:   cl.CardID,
			Amount:   cl.Fare.Neg(),
			Points:   cl.PointsEarned,
			CO2Saved: cl.CO2Saved,
		}); err != nil {
			return err
		}
		if err := appendTransaction(ctx, tx, models.Transaction{
			UserID:      cl.UserID,
			CardID:      cl.CardID,
			Amount:      cl.Fare.Neg(),
			Type:        models.TxnJourneyFare,
			Description: "journey fare",
		}); err != nil {
			return err
		}
		return insertOfflineEvent(ctx, tx, EventTapOut, cl.TapOutOfflineID, cl.JourneyID)
	})
}

func pointCols(p *models.Point) (any, any) {
	if p == nil {
		return nil, nil
	}
	return p.Lat, p.Lng
}

func scanJourney(row *sql.Row) (*models.Journey, error) {
	var j models.Journey
	var inLat, inLng, outLat, outLng, distance sql.NullFloat64
	var outTime sql.NullTime
	var fare, co2 sql.NullString
	var points sql.NullInt64
	var inOff, outOff sql.NullString

	err := row.Scan(
		&j.ID, &j.CardID, &j.BusID, &j.UserID, &j.OperatorID,
		&j.TapInTime, &inLat, &inLng,
		&outTime, &outLat, &outLng,
		&fare, &distance, &co2, &points,
		&inOff, &outOff,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "journey scan failed", Err: err}
	}

	j.TapInLocation = pointFromCols(inLat, inLng)
	j.TapOutLocation = pointFromCols(outLat, outLng)
	if outTime.Valid {
		t := outTime.Time
		j.TapOutTime = &t
	}
	if fare.Valid {
		if d, err := decimal.NewFromString(fare.String); err == nil {
			j.Fare = &d
		}
	}
	if distance.Valid {
		v := distance.Float64
		j.DistanceKm = &v
	}
	if co2.Valid {
		if d, err := decimal.NewFromString(co2.String); err == nil {
			j.CO2Saved = &d
		}
	}
	if points.Valid {
		v := points.Int64
		j.PointsEarned = &v
	}
	j.TapInOfflineID = inOff.String
	j.TapOutOfflineID = outOff.String
	return &j, nil
}

func pointFromCols(lat, lng sql.NullFloat64) *models.Point {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &models.Point{Lat: lat.Float64, Lng: lng.Float64}
}
