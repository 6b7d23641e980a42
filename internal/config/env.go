package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FareEnv carries the metering business constants. The tap-out distance
// fallback and the tap-in minimum balance come from operations and have no
// derivation; they stay overridable pending product confirmation.
type FareEnv struct {
	DefaultBaseFare    decimal.Decimal
	DefaultFarePerKm   decimal.Decimal
	MinTapInBalance    decimal.Decimal
	FallbackDistanceKm float64
}

type Env struct {
	AppAddr      string
	GinMode      string
	DBDSN        string
	JWTSecret    string
	MaxSyncBatch int
	Fare         FareEnv
}

func LoadEnv() Env {
	return Env{
		AppAddr:      envOrDefault("APP_ADDR", ":8080"),
		GinMode:      strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:        envOrDefault("DB_DSN", "root:@tcp(127.0.0.1:3306)/greenbus?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),
		JWTSecret:    envOrDefault("JWT_SECRET", "super-secret-key-change-me"),
		MaxSyncBatch: envOrDefaultInt("SYNC_MAX_BATCH", 100),
		Fare: FareEnv{
			DefaultBaseFare:    envOrDefaultDecimal("FARE_DEFAULT_BASE", "20"),
			DefaultFarePerKm:   envOrDefaultDecimal("FARE_DEFAULT_PER_KM", "1.5"),
			MinTapInBalance:    envOrDefaultDecimal("FARE_MIN_TAP_IN_BALANCE", "10"),
			FallbackDistanceKm: envOrDefaultFloat("FARE_FALLBACK_DISTANCE_KM", 2.5),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultDecimal(key, def string) decimal.Decimal {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(def)
}
