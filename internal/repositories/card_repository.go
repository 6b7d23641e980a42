package repositories

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/db"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

// CardRepository resolves card tokens to wallets and applies wallet deltas.
type CardRepository struct {
	DB *sql.DB
}

const cardColumns = `c.card_id, c.user_id, u.name, c.balance, c.points, c.co2_saved, c.status`

// FindByCardID resolves a card token to its wallet snapshot. Capture
// devices sometimes send the token with the wrong case, so an exact match
// is tried first and a case-insensitive one second; the canonical stored
// card_id is always what comes back.
func (r CardRepository) FindByCardID(ctx context.Context, cardID string) (models.Card, error) {
	card, err := r.scanOne(ctx, `WHERE c.card_id = ?`, cardID)
	if err == nil {
		return card, nil
	}
	if !domain.IsNotFound(err) {
		return models.Card{}, err
	}
	return r.scanOne(ctx, `WHERE LOWER(c.card_id) = LOWER(?)`, cardID)
}

func (r CardRepository) scanOne(ctx context.Context, where string, args ...any) (models.Card, error) {
	var c models.Card
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards c JOIN users u ON u.id = c.user_id `+where, args...,
	).Scan(&c.CardID, &c.UserID, &c.HolderName, &c.Balance, &c.Points, &c.CO2Saved, &c.Status)
	if err == sql.ErrNoRows {
		return models.Card{}, domain.NotFoundError{Resource: "card", Code: domain.CodeCardNotFound}
	}
	if err != nil {
		return models.Card{}, domain.InternalError{Msg: "card lookup failed", Err: err}
	}
	return c, nil
}

// ApplyDelta mutates the wallet by a relative amount in one transaction and
// appends the audit record. Balance clamps at zero on deduction. Used for
// top-ups and admin adjustments; journey fares go through the journey
// close transaction instead.
func (r CardRepository) ApplyDelta(ctx context.Context, delta models.WalletDelta) (models.BalanceChange, error) {
	var change models.BalanceChange
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var userID int64
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT user_id, balance FROM cards WHERE card_id = ? FOR UPDATE`, delta.CardID,
		).Scan(&userID, &balance)
		if err == sql.ErrNoRows {
			return domain.NotFoundError{Resource: "card", Code: domain.CodeCardNotFound}
		}
		if err != nil {
			return domain.InternalError{Msg: "card lock failed", Err: err}
		}

		if err := applyWalletDelta(ctx, tx, delta); err != nil {
			return err
		}
		if err := appendTransaction(ctx, tx, models.Transaction{
			UserID:      userID,
			CardID:      delta.CardID,
			Amount:      delta.Amount,
			Type:        delta.TxnType,
			Description: delta.Description,
		}); err != nil {
			return err
		}

		newBalance := balance.Add(delta.Amount)
		if newBalance.IsNegative() {
			newBalance = decimal.Zero
		}
		change = models.BalanceChange{
			CardID:          delta.CardID,
			PreviousBalance: balance,
			NewBalance:      newBalance,
		}
		return nil
	})
	return change, err
}

// applyWalletDelta is the single relative-delta statement every ledger
// mutation funnels through, inside whatever transaction wraps the event.
func applyWalletDelta(ctx context.Context, q db.Querier, delta models.WalletDelta) error {
	_, err := q.ExecContext(ctx,
		`UPDATE cards
		 SET balance = GREATEST(balance + ?, 0),
		     points = points + ?,
		     co2_saved = co2_saved + ?
		 WHERE card_id = ?`,
		delta.Amount, delta.Points, delta.CO2Saved, delta.CardID,
	)
	if err != nil {
		return domain.InternalError{Msg: "wallet update failed", Err: err}
	}
	return nil
}

func appendTransaction(ctx context.Context, q db.Querier, t models.Transaction) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transactions (user_id, card_id, amount, txn_type, description) VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.CardID, t.Amount, t.Type, t.Description,
	)
	if err != nil {
		return domain.InternalError{Msg: "transaction insert failed", Err: err}
	}
	return nil
}
