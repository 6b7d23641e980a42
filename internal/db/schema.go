package db

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the metering core depends on. The unique
// keys here are load-bearing: uq_offline_event backs the idempotency guard,
// uq_open_journey backs the one-open-journey invariant, and uq_seat_hold
// backs seat exclusivity. Application code treats violations of these keys
// as domain outcomes, never as generic failures.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(191) NOT NULL,
			email VARCHAR(191) NOT NULL,
			phone VARCHAR(32) NOT NULL DEFAULT '',
			password_hash VARCHAR(191) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'rider',
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(191) NOT NULL DEFAULT '',
			base_fare DECIMAL(10,2) NOT NULL DEFAULT 20.00,
			fare_per_km DECIMAL(10,2) NOT NULL DEFAULT 1.50
		)`,
		`CREATE TABLE IF NOT EXISTS buses (
			id VARCHAR(64) PRIMARY KEY,
			bus_number VARCHAR(64) NOT NULL,
			route_id VARCHAR(64) NULL,
			capacity INT NOT NULL DEFAULT 40,
			supervisor_id BIGINT NULL,
			driver_id BIGINT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			card_id VARCHAR(64) PRIMARY KEY,
			user_id BIGINT NOT NULL,
			balance DECIMAL(10,2) NOT NULL DEFAULT 0.00,
			points BIGINT NOT NULL DEFAULT 0,
			co2_saved DECIMAL(10,2) NOT NULL DEFAULT 0.00,
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			UNIQUE KEY uq_cards_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS journeys (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			card_id VARCHAR(64) NOT NULL,
			bus_id VARCHAR(64) NOT NULL,
			user_id BIGINT NOT NULL,
			operator_id BIGINT NOT NULL,
			tap_in_time DATETIME NOT NULL,
			tap_in_lat DOUBLE NULL,
			tap_in_lng DOUBLE NULL,
			tap_out_time DATETIME NULL,
			tap_out_lat DOUBLE NULL,
			tap_out_lng DOUBLE NULL,
			fare DECIMAL(10,2) NULL,
			distance_km DOUBLE NULL,
			co2_saved DECIMAL(10,2) NULL,
			points_earned BIGINT NULL,
			tap_in_offline_id VARCHAR(128) NULL,
			tap_out_offline_id VARCHAR(128) NULL,
			open_flag TINYINT AS (IF(tap_out_time IS NULL, 1, NULL)) STORED,
			UNIQUE KEY uq_open_journey (card_id, bus_id, open_flag),
			KEY idx_journeys_card_bus (card_id, bus_id)
		)`,
		`CREATE TABLE IF NOT EXISTS manual_tickets (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			serial VARCHAR(64) NOT NULL,
			bus_id VARCHAR(64) NOT NULL,
			operator_id BIGINT NOT NULL,
			passenger_count INT NOT NULL DEFAULT 1,
			fare DECIMAL(10,2) NOT NULL,
			payment_method VARCHAR(32) NOT NULL DEFAULT 'cash',
			ticket_type VARCHAR(32) NOT NULL DEFAULT 'single',
			loc_lat DOUBLE NULL,
			loc_lng DOUBLE NULL,
			issued_at DATETIME NOT NULL,
			offline_id VARCHAR(128) NULL,
			booking_id BIGINT NULL,
			UNIQUE KEY uq_tickets_serial (serial)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			bus_id VARCHAR(64) NOT NULL,
			route_id VARCHAR(64) NOT NULL,
			user_id BIGINT NOT NULL,
			seat_no INT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'booked',
			fare DECIMAL(10,2) NOT NULL DEFAULT 0.00,
			payment_method VARCHAR(32) NOT NULL DEFAULT '',
			payment_status VARCHAR(32) NOT NULL DEFAULT '',
			travel_date DATE NOT NULL,
			drop_stop VARCHAR(191) NOT NULL DEFAULT '',
			booked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			seat_hold INT AS (IF(status IN ('cancelled', 'completed'), NULL, seat_no)) STORED,
			UNIQUE KEY uq_seat_hold (bus_id, travel_date, seat_hold),
			KEY idx_bookings_bus_date (bus_id, travel_date)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			card_id VARCHAR(64) NOT NULL DEFAULT '',
			amount DECIMAL(10,2) NOT NULL,
			txn_type VARCHAR(32) NOT NULL,
			description VARCHAR(255) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_transactions_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS offline_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			event_type VARCHAR(32) NOT NULL,
			offline_id VARCHAR(128) NOT NULL,
			ref_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_offline_event (event_type, offline_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
