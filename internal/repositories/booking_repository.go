package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/db"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

// BookingRepository persists seat reservations. Seat exclusivity is not a
// read-then-write check here: the uq_seat_hold unique key decides the
// winner and the loser's insert comes back as SEAT_TAKEN.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) Create(ctx context.Context, b *models.Booking) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var err error
		id, err = insertBooking(ctx, tx, b)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertBooking(ctx context.Context, q db.Querier, b *models.Booking) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO bookings
		 (bus_id, route_id, user_id, seat_no, status, fare, payment_method, payment_status, travel_date, drop_stop, booked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BusID, b.RouteID, b.UserID, b.SeatNo, b.Status, b.Fare,
		b.PaymentMethod, b.PaymentStatus, b.TravelDate, b.DropStop, b.BookedAt,
	)
	if db.IsDuplicateKey(err, "uq_seat_hold") {
		return 0, domain.ConflictError{
			Resource: "seat",
			Code:     domain.CodeSeatTaken,
			Msg:      "seat already reserved for this travel date",
			Err:      err,
		}
	}
	if err != nil {
		return 0, domain.InternalError{Msg: "booking insert failed", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "booking id unavailable", Err: err}
	}
	return id, nil
}

// ListForBus returns the seat-holding bookings for a bus, optionally
// limited to one travel date, ordered by seat number.
func (r BookingRepository) ListForBus(ctx context.Context, busID, travelDate string) ([]models.Booking, error) {
	query := `SELECT id, bus_id, route_id, user_id, seat_no, status, fare,
	                 payment_method, payment_status, travel_date, drop_stop, booked_at
	          FROM bookings
	          WHERE bus_id = ? AND status IN ('booked','confirmed','occupied')`
	args := []any{busID}
	if strings.TrimSpace(travelDate) != "" {
		query += ` AND travel_date = ?`
		args = append(args, travelDate)
	}
	query += ` ORDER BY seat_no ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "booking list failed", Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		var seatNo sql.NullInt64
		var fare string
		var travel time.Time
		if err := rows.Scan(&b.ID, &b.BusID, &b.RouteID, &b.UserID, &seatNo, &b.Status, &fare,
			&b.PaymentMethod, &b.PaymentStatus, &travel, &b.DropStop, &b.BookedAt); err != nil {
			return nil, domain.InternalError{Msg: "booking scan failed", Err: err}
		}
		if seatNo.Valid {
			v := int(seatNo.Int64)
			b.SeatNo = &v
		}
		if d, err := decimal.NewFromString(fare); err == nil {
			b.Fare = d
		}
		b.TravelDate = travel.Format("2006-01-02")
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReleaseAtStop frees the reservations whose drop stop matches the stop
// the bus just arrived at. Returns the number of freed seats.
func (r BookingRepository) ReleaseAtStop(ctx context.Context, busID, stopName string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = ?
		 WHERE bus_id = ? AND drop_stop = ? AND status IN ('booked','confirmed','occupied')`,
		models.BookingStatusCompleted, busID, stopName,
	)
	if err != nil {
		return 0, domain.InternalError{Msg: "booking release failed", Err: err}
	}
	return res.RowsAffected()
}

// CompleteTrip closes out every remaining reservation for a bus when its
// route run ends.
func (r BookingRepository) CompleteTrip(ctx context.Context, busID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = ?
		 WHERE bus_id = ? AND status IN ('booked','confirmed','occupied')`,
		models.BookingStatusCompleted, busID,
	)
	if err != nil {
		return 0, domain.InternalError{Msg: "trip completion failed", Err: err}
	}
	return res.RowsAffected()
}
