package services

import (
	"context"
	"strconv"

	"greenbus/backend/internal/config"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
	"greenbus/backend/internal/utils"
)

// BookingService handles app-side seat reservations and the driver-side
// triggers that free seats again. Two riders grabbing the last seat resolve
// at the storage layer: the unique seat-hold key lets exactly one insert
// through and the loser gets SEAT_TAKEN.
type BookingService struct {
	Bookings  ReservationStore
	Routes    RouteStore
	Fare      config.FareEnv
	RequestID string
}

type BookSeatRequest struct {
	BusID         string `json:"bus_id" binding:"required"`
	SeatNo        int    `json:"seat_no" binding:"required"`
	TravelDate    string `json:"travel_date" binding:"required"`
	DropStop      string `json:"drop_stop"`
	PaymentMethod string `json:"payment_method"`
}

func (s BookingService) BookSeat(ctx context.Context, req BookSeatRequest, actor domain.RequestContext) (*models.Booking, error) {
	utils.LogEvent(s.RequestID, "booking", "book_seat",
		"bus="+req.BusID+" seat="+strconv.Itoa(req.SeatNo))

	if _, err := utils.ParseDate(req.TravelDate); err != nil {
		return nil, domain.ValidationError{Field: "travel_date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	bus, err := s.Routes.BusByID(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	if req.SeatNo < 1 || req.SeatNo > bus.Capacity {
		return nil, domain.ValidationError{Field: "seat_no", Msg: "seat number out of range for this bus"}
	}

	cfg, found, err := s.Routes.FareForBus(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = models.FareConfig{BaseFare: s.Fare.DefaultBaseFare, FarePerKm: s.Fare.DefaultFarePerKm}
	}

	seat := req.SeatNo
	b := &models.Booking{
		BusID:         bus.ID,
		RouteID:       bus.RouteID,
		UserID:        int64(actor.UserID),
		SeatNo:        &seat,
		Status:        models.BookingStatusBooked,
		Fare:          utils.Round2(cfg.BaseFare),
		PaymentMethod: defaultStr(req.PaymentMethod, "wallet"),
		PaymentStatus: "pending",
		TravelDate:    req.TravelDate,
		DropStop:      req.DropStop,
		BookedAt:      utils.NowUTC(),
	}
	id, err := s.Bookings.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return b, nil
}

// SeatMapForBus is the supervisor view: every held seat on the bus for a
// travel date plus the occupancy counts.
func (s BookingService) SeatMapForBus(ctx context.Context, busID, travelDate string) (*models.SeatMap, error) {
	bus, err := s.Routes.BusByID(ctx, busID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListForBus(ctx, busID, travelDate)
	if err != nil {
		return nil, err
	}
	return &models.SeatMap{
		BusID:          bus.ID,
		BusNumber:      bus.BusNumber,
		TotalSeats:     bus.Capacity,
		BookedSeats:    len(bookings),
		AvailableSeats: bus.Capacity - len(bookings),
		Bookings:       bookings,
	}, nil
}

// ArriveAtStop releases the seats of every reservation dropping at the
// stop. Fired by the driver app when the bus reaches a stop.
func (s BookingService) ArriveAtStop(ctx context.Context, busID, stopName string) (int64, error) {
	if stopName == "" {
		return 0, domain.ValidationError{Field: "stop", Msg: "must not be empty"}
	}
	if _, err := s.Routes.BusByID(ctx, busID); err != nil {
		return 0, err
	}
	released, err := s.Bookings.ReleaseAtStop(ctx, busID, stopName)
	if err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "booking", "arrive_stop",
		"bus="+busID+" stop="+stopName+" released="+strconv.FormatInt(released, 10))
	return released, nil
}

// CompleteTrip frees every remaining seat when the route run ends.
func (s BookingService) CompleteTrip(ctx context.Context, busID string) (int64, error) {
	if _, err := s.Routes.BusByID(ctx, busID); err != nil {
		return 0, err
	}
	released, err := s.Bookings.CompleteTrip(ctx, busID)
	if err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "booking", "complete_trip",
		"bus="+busID+" released="+strconv.FormatInt(released, 10))
	return released, nil
}
