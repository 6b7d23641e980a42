package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManualTicket is a paper ticket issued by an operator without NFC capture,
// e.g. a cash fare for a walk-up passenger. Immutable once created.
type ManualTicket struct {
	ID             int64           `json:"id"`
	Serial         string          `json:"serial"`
	BusID          string          `json:"bus_id"`
	OperatorID     int64           `json:"operator_id"`
	PassengerCount int             `json:"passenger_count"`
	Fare           decimal.Decimal `json:"fare"`
	PaymentMethod  string          `json:"payment_method"`
	TicketType     string          `json:"ticket_type"`
	Location       *Point          `json:"location,omitempty"`
	IssuedAt       time.Time       `json:"issued_at"`
	OfflineID      string          `json:"offline_id,omitempty"`
	BookingID      *int64          `json:"booking_id,omitempty"`
}
