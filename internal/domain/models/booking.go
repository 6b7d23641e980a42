package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses. A seat is held while a booking is booked, confirmed or
// occupied; the storage layer keeps the (bus, travel date, seat) uniqueness
// over exactly those states.
const (
	BookingStatusBooked    = "booked"
	BookingStatusConfirmed = "confirmed"
	BookingStatusOccupied  = "occupied"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking ties a traveler to a seat on a bus for a travel date.
type Booking struct {
	ID            int64           `json:"id"`
	BusID         string          `json:"bus_id"`
	RouteID       string          `json:"route_id"`
	UserID        int64           `json:"user_id"`
	SeatNo        *int            `json:"seat_no,omitempty"`
	Status        string          `json:"status"`
	Fare          decimal.Decimal `json:"fare"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	TravelDate    string          `json:"travel_date"`
	DropStop      string          `json:"drop_stop,omitempty"`
	BookedAt      time.Time       `json:"booked_at"`
}

// SeatMap summarizes seat occupancy for a bus on a date.
type SeatMap struct {
	BusID          string    `json:"bus_id"`
	BusNumber      string    `json:"bus_number"`
	TotalSeats     int       `json:"total_seats"`
	BookedSeats    int       `json:"booked_seats"`
	AvailableSeats int       `json:"available_seats"`
	Bookings       []Booking `json:"bookings"`
}
