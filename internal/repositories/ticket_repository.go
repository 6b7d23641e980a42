package repositories

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/db"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

// TicketRepository persists operator-issued paper tickets.
type TicketRepository struct {
	DB *sql.DB
}

// Create writes the ticket, its optional walk-up seat reservation, and its
// idempotency key in one transaction. A seat conflict on the reservation
// aborts the whole ticket, so a device retry can safely re-submit.
func (r TicketRepository) Create(ctx context.Context, t *models.ManualTicket, reservation *models.Booking) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if reservation != nil {
			bookingID, err := insertBooking(ctx, tx, reservation)
			if err != nil {
				return err
			}
			t.BookingID = &bookingID
		}

		lat, lng := pointCols(t.Location)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO manual_tickets
			 (serial, bus_id, operator_id, passenger_count, fare, payment_method, ticket_type, loc_lat, loc_lng, issued_at, offline_id, booking_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Serial, t.BusID, t.OperatorID, t.PassengerCount, t.Fare, t.PaymentMethod, t.TicketType,
			lat, lng, t.IssuedAt, db.NullIfEmpty(t.OfflineID), t.BookingID,
		)
		if err != nil {
			return domain.InternalError{Msg: "ticket insert failed", Err: err}
		}
		id, err = res.LastInsertId()
		if err != nil {
			return domain.InternalError{Msg: "ticket id unavailable", Err: err}
		}
		return insertOfflineEvent(ctx, tx, EventManualTicket, t.OfflineID, id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByOfflineID returns the ticket an offline id created, or nil.
func (r TicketRepository) FindByOfflineID(ctx context.Context, offlineID string) (*models.ManualTicket, error) {
	refID, found, err := findOfflineEvent(ctx, r.DB, EventManualTicket, offlineID)
	if err != nil || !found {
		return nil, err
	}
	return r.FindByID(ctx, refID)
}

func (r TicketRepository) FindByID(ctx context.Context, id int64) (*models.ManualTicket, error) {
	var t models.ManualTicket
	var lat, lng sql.NullFloat64
	var offlineID sql.NullString
	var bookingID sql.NullInt64
	var fare string

	err := r.DB.QueryRowContext(ctx,
		`SELECT id, serial, bus_id, operator_id, passenger_count, fare, payment_method, ticket_type,
		        loc_lat, loc_lng, issued_at, offline_id, booking_id
		 FROM manual_tickets WHERE id = ?`, id,
	).Scan(&t.ID, &t.Serial, &t.BusID, &t.OperatorID, &t.PassengerCount, &fare, &t.PaymentMethod, &t.TicketType,
		&lat, &lng, &t.IssuedAt, &offlineID, &bookingID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "ticket"}
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "ticket lookup failed", Err: err}
	}

	if d, err := decimal.NewFromString(fare); err == nil {
		t.Fare = d
	}
	t.Location = pointFromCols(lat, lng)
	t.OfflineID = offlineID.String
	if bookingID.Valid {
		v := bookingID.Int64
		t.BookingID = &v
	}
	return &t, nil
}
