package utils

import (
	"math"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain/models"
)

// Per-km rates for the rider incentives computed alongside every fare.
var (
	co2SavedPerKm = decimal.RequireFromString("0.12") // kg vs. private car
	pointsPerKm   = 10.0
)

// FareQuote is the money and reward effect of one completed journey.
type FareQuote struct {
	DistanceKm   float64
	Fare         decimal.Decimal
	CO2Saved     decimal.Decimal
	PointsEarned int64
}

// QuoteFare computes fare = base + km * rate, rounded to 2 decimal places,
// plus the emissions-saved estimate and loyalty points for the distance.
// Distance is rounded to 2 decimals first so a replayed tap-out recomputes
// to exactly the same amounts.
func QuoteFare(cfg models.FareConfig, distanceKm float64) FareQuote {
	km := math.Round(distanceKm*100) / 100
	dist := decimal.NewFromFloat(km)

	return FareQuote{
		DistanceKm:   km,
		Fare:         Round2(cfg.BaseFare.Add(dist.Mul(cfg.FarePerKm))),
		CO2Saved:     Round2(dist.Mul(co2SavedPerKm)),
		PointsEarned: int64(math.Floor(km * pointsPerKm)),
	}
}
