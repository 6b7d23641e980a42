package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
	"greenbus/backend/internal/utils"
)

// CardService covers wallet operations outside the metering flow: balance
// snapshots, rider top-ups and admin corrections. Every mutation lands in
// the transactions audit trail through the same ledger path as fares.
type CardService struct {
	Cards     CardStore
	RequestID string
}

type TopUpRequest struct {
	CardID string `json:"card_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type AdjustBalanceRequest struct {
	CardID      string `json:"card_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

func (s CardService) Snapshot(ctx context.Context, cardID string) (models.Card, error) {
	return s.Cards.FindByCardID(ctx, cardID)
}

func (s CardService) TopUp(ctx context.Context, req TopUpRequest, actor domain.RequestContext) (models.BalanceChange, error) {
	utils.LogEvent(s.RequestID, "card", "top_up", "card="+req.CardID)

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return models.BalanceChange{}, domain.ValidationError{Field: "amount", Msg: "not a valid amount", Err: err}
	}
	if !amount.IsPositive() {
		return models.BalanceChange{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}

	card, err := s.Cards.FindByCardID(ctx, req.CardID)
	if err != nil {
		return models.BalanceChange{}, err
	}
	return s.Cards.ApplyDelta(ctx, models.WalletDelta{
		CardID:      card.CardID,
		Amount:      utils.Round2(amount),
		TxnType:     models.TxnTopUp,
		Description: "wallet top-up",
		ActorID:     int64(actor.UserID),
	})
}

// AdjustBalance applies a signed admin correction. Negative amounts clamp
// at a zero balance like any other deduction.
func (s CardService) AdjustBalance(ctx context.Context, req AdjustBalanceRequest, actor domain.RequestContext) (models.BalanceChange, error) {
	utils.LogEvent(s.RequestID, "card", "adjust_balance", "card="+req.CardID)

	// Signed on purpose: corrections go both ways.
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return models.BalanceChange{}, domain.ValidationError{Field: "amount", Msg: "not a valid amount", Err: err}
	}
	if amount.Equal(decimal.Zero) {
		return models.BalanceChange{}, domain.ValidationError{Field: "amount", Msg: "must not be zero"}
	}

	card, err := s.Cards.FindByCardID(ctx, req.CardID)
	if err != nil {
		return models.BalanceChange{}, err
	}
	return s.Cards.ApplyDelta(ctx, models.WalletDelta{
		CardID:      card.CardID,
		Amount:      utils.Round2(amount),
		TxnType:     models.TxnAdminAdjustment,
		Description: defaultStr(strings.TrimSpace(req.Description), "admin balance adjustment"),
		ActorID:     int64(actor.UserID),
	})
}
