package models

import "github.com/shopspring/decimal"

// Card identifies a rider's fare instrument together with the wallet it
// draws from. Balance never goes below zero; deductions clamp at zero.
type Card struct {
	CardID     string          `json:"card_id"`
	UserID     int64           `json:"user_id"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Points     int64           `json:"points"`
	CO2Saved   decimal.Decimal `json:"co2_saved"`
	Status     string          `json:"status"`
}

// WalletDelta expresses a relative wallet mutation. Amount is the signed
// balance change (negative for fares); the deltas are applied atomically at
// the storage layer, never read-modify-write in application memory.
type WalletDelta struct {
	CardID      string
	Amount      decimal.Decimal
	Points      int64
	CO2Saved    decimal.Decimal
	TxnType     string
	Description string
	ActorID     int64
}

// BalanceChange reports a completed wallet mutation for audit responses.
type BalanceChange struct {
	CardID          string          `json:"card_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}
