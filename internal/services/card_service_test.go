package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

func admin() domain.RequestContext {
	return domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}
}

func newCardFixture(t *testing.T, balance string) (CardService, *fakeCards) {
	t.Helper()
	cards := newFakeCards(models.Card{
		CardID:  "GB-1001",
		UserID:  7,
		Balance: decimal.RequireFromString(balance),
		Status:  "active",
	})
	return CardService{Cards: cards}, cards
}

func TestTopUp(t *testing.T) {
	svc, cards := newCardFixture(t, "10")

	change, err := svc.TopUp(context.Background(), TopUpRequest{CardID: "GB-1001", Amount: "50"}, admin())
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if got := change.NewBalance.StringFixed(2); got != "60.00" {
		t.Fatalf("new balance = %s, want 60.00", got)
	}
	if len(cards.txns) != 1 || cards.txns[0].Type != models.TxnTopUp {
		t.Fatalf("txns = %+v, want one top_up entry", cards.txns)
	}
}

func TestTopUpRejectsNonPositive(t *testing.T) {
	svc, _ := newCardFixture(t, "10")

	for _, amount := range []string{"0", "-5", "abc"} {
		if _, err := svc.TopUp(context.Background(), TopUpRequest{CardID: "GB-1001", Amount: amount}, admin()); !domain.IsValidation(err) {
			t.Fatalf("amount %q: err = %v, want validation error", amount, err)
		}
	}
}

func TestAdjustBalanceDebit(t *testing.T) {
	svc, cards := newCardFixture(t, "30")

	change, err := svc.AdjustBalance(context.Background(), AdjustBalanceRequest{
		CardID: "GB-1001",
		Amount: "-12.50",
	}, admin())
	if err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}
	if got := change.NewBalance.StringFixed(2); got != "17.50" {
		t.Fatalf("new balance = %s, want 17.50", got)
	}
	if len(cards.txns) != 1 || cards.txns[0].Type != models.TxnAdminAdjustment {
		t.Fatalf("txns = %+v, want one admin_adjustment entry", cards.txns)
	}
}

func TestAdjustBalanceClampsAtZero(t *testing.T) {
	svc, _ := newCardFixture(t, "5")

	change, err := svc.AdjustBalance(context.Background(), AdjustBalanceRequest{
		CardID: "GB-1001",
		Amount: "-100",
	}, admin())
	if err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}
	if !change.NewBalance.IsZero() {
		t.Fatalf("new balance = %s, want 0", change.NewBalance)
	}
}

func TestAdjustBalanceRejectsZero(t *testing.T) {
	svc, _ := newCardFixture(t, "5")

	if _, err := svc.AdjustBalance(context.Background(), AdjustBalanceRequest{CardID: "GB-1001", Amount: "0"}, admin()); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSnapshotUnknownCard(t *testing.T) {
	svc, _ := newCardFixture(t, "5")

	_, err := svc.Snapshot(context.Background(), "ghost")
	if code := domain.ErrorCode(err); code != domain.CodeCardNotFound {
		t.Fatalf("code = %q (err %v), want %q", code, err, domain.CodeCardNotFound)
	}
}
