package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journey is one tap record: created open by a tap-in, closed by the
// matching tap-out. For a given (card, bus) pair at most one journey may be
// open at any instant; the storage layer enforces that with a unique key
// over a generated column, not an application-level check.
type Journey struct {
	ID              int64            `json:"id"`
	CardID          string           `json:"card_id"`
	BusID           string           `json:"bus_id"`
	UserID          int64            `json:"user_id"`
	OperatorID      int64            `json:"operator_id"`
	TapInTime       time.Time        `json:"tap_in_time"`
	TapInLocation   *Point           `json:"tap_in_location,omitempty"`
	TapOutTime      *time.Time       `json:"tap_out_time,omitempty"`
	TapOutLocation  *Point           `json:"tap_out_location,omitempty"`
	Fare            *decimal.Decimal `json:"fare,omitempty"`
	DistanceKm      *float64         `json:"distance_km,omitempty"`
	CO2Saved        *decimal.Decimal `json:"co2_saved,omitempty"`
	PointsEarned    *int64           `json:"points_earned,omitempty"`
	TapInOfflineID  string           `json:"tap_in_offline_id,omitempty"`
	TapOutOfflineID string           `json:"tap_out_offline_id,omitempty"`
}

// Open reports whether the journey is still waiting for a tap-out.
func (j Journey) Open() bool { return j.TapOutTime == nil }

// JourneyClose carries everything the storage layer needs to close a
// journey and apply its monetary effects in one transaction.
type JourneyClose struct {
	JourneyID       int64
	CardID          string
	UserID          int64
	TapOutTime      time.Time
	TapOutLocation  *Point
	Fare            decimal.Decimal
	DistanceKm      float64
	CO2Saved        decimal.Decimal
	PointsEarned    int64
	TapOutOfflineID string
}
