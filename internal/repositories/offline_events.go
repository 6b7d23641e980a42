package repositories

import (
	"context"
	"database/sql"

	"greenbus/backend/internal/db"
	"greenbus/backend/internal/domain"
)

// Event types recorded in the offline_events guard table. Tap-in and
// tap-out keys live in distinct key spaces even when a device reuses the
// same id for both halves of a journey.
const (
	EventTapIn        = "tap_in"
	EventTapOut       = "tap_out"
	EventManualTicket = "manual_ticket"
)

// findOfflineEvent returns the ref id an offline id was applied to, or
// found=false when the id has never been seen for that event type.
func findOfflineEvent(ctx context.Context, q db.Querier, eventType, offlineID string) (refID int64, found bool, err error) {
	if offlineID == "" {
		return 0, false, nil
	}
	err = q.QueryRowContext(ctx,
		`SELECT ref_id FROM offline_events WHERE event_type = ? AND offline_id = ?`,
		eventType, offlineID,
	).Scan(&refID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, domain.InternalError{Msg: "offline event lookup failed", Err: err}
	}
	return refID, true, nil
}

// insertOfflineEvent persists the idempotency key inside the caller's
// transaction, so a crash between check and persist cannot double-apply.
// A concurrent insert of the same key surfaces as a DUPLICATE_EVENT
// conflict for the loser.
func insertOfflineEvent(ctx context.Context, q db.Querier, eventType, offlineID string, refID int64) error {
	if offlineID == "" {
		return nil
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO offline_events (event_type, offline_id, ref_id) VALUES (?, ?, ?)`,
		eventType, offlineID, refID,
	)
	if db.IsDuplicateKey(err, "uq_offline_event") {
		return domain.ConflictError{Resource: "event", Code: domain.CodeDuplicateEvent, Msg: "event already processed", Err: err}
	}
	if err != nil {
		return domain.InternalError{Msg: "offline event insert failed", Err: err}
	}
	return nil
}
