package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"greenbus/backend/internal/config"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
	"greenbus/backend/internal/utils"
)

// TicketService records paper tickets sold by an operator to walk-up
// passengers. Tickets are cash-side records: they never touch any card
// wallet. An operator may attach a seat hold, which goes through the same
// storage-level exclusivity as app bookings.
type TicketService struct {
	Tickets   TicketStore
	Routes    RouteStore
	Fare      config.FareEnv
	RequestID string
}

type ManualTicketRequest struct {
	BusID          string        `json:"bus_id" binding:"required"`
	PassengerCount int           `json:"passenger_count"`
	Fare           *string       `json:"fare"`
	PaymentMethod  string        `json:"payment_method"`
	TicketType     string        `json:"ticket_type"`
	Timestamp      string        `json:"timestamp"`
	Location       *models.Point `json:"location"`
	OfflineID      string        `json:"offline_id"`
	SeatNo         *int          `json:"seat_no"`
	TravelDate     string        `json:"travel_date"`
	OperatorID     int64         `json:"-"`
}

type ManualTicketResult struct {
	TicketID  int64           `json:"ticket_id"`
	Serial    string          `json:"serial"`
	Fare      decimal.Decimal `json:"fare"`
	IssuedAt  string          `json:"issued_at"`
	BookingID *int64          `json:"booking_id,omitempty"`
	Duplicate bool            `json:"duplicate,omitempty"`
}

func (s TicketService) Issue(ctx context.Context, req ManualTicketRequest) (*ManualTicketResult, error) {
	utils.LogEvent(s.RequestID, "ticket", "manual_issue", "bus="+req.BusID)

	if req.OfflineID != "" {
		if prior, err := s.Tickets.FindByOfflineID(ctx, req.OfflineID); err != nil {
			return nil, err
		} else if prior != nil {
			return replayTicket(prior), nil
		}
	}

	if req.PassengerCount <= 0 {
		req.PassengerCount = 1
	}
	bus, err := s.Routes.BusByID(ctx, req.BusID)
	if err != nil {
		return nil, err
	}

	fare, err := s.resolveFare(ctx, req)
	if err != nil {
		return nil, err
	}

	t := &models.ManualTicket{
		Serial:         newTicketSerial(),
		BusID:          bus.ID,
		OperatorID:     req.OperatorID,
		PassengerCount: req.PassengerCount,
		Fare:           fare,
		PaymentMethod:  defaultStr(req.PaymentMethod, "cash"),
		TicketType:     defaultStr(req.TicketType, "single"),
		Location:       req.Location,
		IssuedAt:       utils.ParseTimestamp(req.Timestamp),
		OfflineID:      req.OfflineID,
	}

	var reservation *models.Booking
	if req.SeatNo != nil {
		if *req.SeatNo < 1 || *req.SeatNo > bus.Capacity {
			return nil, domain.ValidationError{Field: "seat_no", Msg: "seat number out of range for this bus"}
		}
		reservation = &models.Booking{
			BusID:         bus.ID,
			RouteID:       bus.RouteID,
			UserID:        req.OperatorID,
			SeatNo:        req.SeatNo,
			Status:        models.BookingStatusOccupied,
			Fare:          fare,
			PaymentMethod: t.PaymentMethod,
			PaymentStatus: "paid",
			TravelDate:    defaultStr(req.TravelDate, utils.FormatDate(t.IssuedAt)),
			BookedAt:      t.IssuedAt,
		}
	}

	id, err := s.Tickets.Create(ctx, t, reservation)
	if domain.IsDuplicateEvent(err) {
		if prior, perr := s.Tickets.FindByOfflineID(ctx, req.OfflineID); perr == nil && prior != nil {
			return replayTicket(prior), nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return &ManualTicketResult{
		TicketID:  id,
		Serial:    t.Serial,
		Fare:      t.Fare,
		IssuedAt:  t.IssuedAt.Format(time.RFC3339),
		BookingID: t.BookingID,
	}, nil
}

func (s TicketService) FindByID(ctx context.Context, id int64) (*models.ManualTicket, error) {
	return s.Tickets.FindByID(ctx, id)
}

// resolveFare takes the operator-entered amount when present, otherwise
// charges the route base fare per passenger.
func (s TicketService) resolveFare(ctx context.Context, req ManualTicketRequest) (decimal.Decimal, error) {
	if req.Fare != nil && strings.TrimSpace(*req.Fare) != "" {
		f, err := utils.ParseAmount(*req.Fare)
		if err != nil {
			return decimal.Zero, domain.ValidationError{Field: "fare", Msg: "not a valid amount", Err: err}
		}
		if f.IsNegative() {
			return decimal.Zero, domain.ValidationError{Field: "fare", Msg: "must not be negative"}
		}
		return utils.Round2(f), nil
	}

	cfg, found, err := s.Routes.FareForBus(ctx, req.BusID)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		cfg = models.FareConfig{BaseFare: s.Fare.DefaultBaseFare, FarePerKm: s.Fare.DefaultFarePerKm}
	}
	return utils.Round2(cfg.BaseFare.Mul(decimal.NewFromInt(int64(req.PassengerCount)))), nil
}

func replayTicket(t *models.ManualTicket) *ManualTicketResult {
	return &ManualTicketResult{
		TicketID:  t.ID,
		Serial:    t.Serial,
		Fare:      t.Fare,
		IssuedAt:  t.IssuedAt.Format(time.RFC3339),
		BookingID: t.BookingID,
		Duplicate: true,
	}
}

func newTicketSerial() string {
	u := uuid.NewString()
	return "MT-" + strings.ToUpper(u[:8])
}

func defaultStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
