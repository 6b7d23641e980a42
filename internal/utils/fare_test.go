package utils

import (
	"testing"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain/models"
)

func fareCfg(base, perKm string) models.FareConfig {
	return models.FareConfig{
		BaseFare:  decimal.RequireFromString(base),
		FarePerKm: decimal.RequireFromString(perKm),
	}
}

func TestQuoteFareFiveKm(t *testing.T) {
	q := QuoteFare(fareCfg("20", "1.5"), 5.0)

	if got := q.Fare.StringFixed(2); got != "27.50" {
		t.Fatalf("fare = %s, want 27.50", got)
	}
	if got := q.CO2Saved.StringFixed(2); got != "0.60" {
		t.Fatalf("co2 = %s, want 0.60", got)
	}
	if q.PointsEarned != 50 {
		t.Fatalf("points = %d, want 50", q.PointsEarned)
	}
	if q.DistanceKm != 5.0 {
		t.Fatalf("distance = %v, want 5.0", q.DistanceKm)
	}
}

func TestQuoteFareRoundsHalfUp(t *testing.T) {
	// 20 + 3.37*1.5 = 25.055, half-up to 25.06
	q := QuoteFare(fareCfg("20", "1.5"), 3.37)
	if got := q.Fare.StringFixed(2); got != "25.06" {
		t.Fatalf("fare = %s, want 25.06", got)
	}
}

func TestQuoteFareRoundsDistanceFirst(t *testing.T) {
	// Raw haversine distances carry noise; 4.996999 must quote like 5.00.
	a := QuoteFare(fareCfg("20", "1.5"), 4.996999)
	b := QuoteFare(fareCfg("20", "1.5"), 5.0001)
	if a.DistanceKm != 5.0 || b.DistanceKm != 5.0 {
		t.Fatalf("distances = %v, %v, want 5.0 for both", a.DistanceKm, b.DistanceKm)
	}
	if !a.Fare.Equal(b.Fare) {
		t.Fatalf("fares differ: %s vs %s", a.Fare, b.Fare)
	}
}

func TestQuoteFarePointsFloor(t *testing.T) {
	// 3.29 km is 32.9 raw points; partial kilometres never round up.
	q := QuoteFare(fareCfg("20", "1.5"), 3.29)
	if q.PointsEarned != 32 {
		t.Fatalf("points = %d, want 32", q.PointsEarned)
	}
}

func TestQuoteFareZeroDistance(t *testing.T) {
	q := QuoteFare(fareCfg("20", "1.5"), 0)
	if got := q.Fare.StringFixed(2); got != "20.00" {
		t.Fatalf("fare = %s, want base fare 20.00", got)
	}
	if q.PointsEarned != 0 {
		t.Fatalf("points = %d, want 0", q.PointsEarned)
	}
}
