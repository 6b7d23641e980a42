package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types recorded in the audit ledger.
const (
	TxnJourneyFare     = "journey_fare"
	TxnManualTicket    = "manual_ticket"
	TxnTopUp           = "top_up"
	TxnAdminAdjustment = "admin_adjustment"
)

// Transaction is the append-only audit record written alongside every
// wallet mutation, including administrative adjustments performed outside
// the tap flow.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	CardID      string          `json:"card_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
