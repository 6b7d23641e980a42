package models

import "github.com/shopspring/decimal"

// FareConfig is the per-route pricing read from the route store. When a bus
// has no resolvable route the caller falls back to the configured defaults
// instead of failing the tap-out.
type FareConfig struct {
	BaseFare  decimal.Decimal `json:"base_fare"`
	FarePerKm decimal.Decimal `json:"fare_per_km"`
}

// Bus is the subset of bus data the metering core needs.
type Bus struct {
	ID           string `json:"id"`
	BusNumber    string `json:"bus_number"`
	RouteID      string `json:"route_id"`
	Capacity     int    `json:"capacity"`
	SupervisorID int64  `json:"supervisor_id"`
}

// User is the identity record behind login and card ownership.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Status       string `json:"status"`
}
