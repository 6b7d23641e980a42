package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

func newSyncFixture(t *testing.T) SyncService {
	t.Helper()
	cards := newFakeCards(models.Card{
		CardID:  "GB-1001",
		UserID:  7,
		Balance: decimal.RequireFromString("100"),
		Status:  "active",
	})
	journeys := newFakeJourneys(cards)
	routes := newFakeRoutes()
	routes.addBus(models.Bus{ID: "bus-1", BusNumber: "GB-07", RouteID: "route-1", Capacity: 40}, nil)
	bookings := newFakeBookings()
	tickets := newFakeTickets(bookings)

	taps := TapService{Cards: cards, Journeys: journeys, Routes: routes, Fare: testFareEnv()}
	tix := TicketService{Tickets: tickets, Routes: routes, Fare: testFareEnv()}
	return SyncService{Taps: taps, Tickets: tix, MaxBatch: 100}
}

func rawEvent(t *testing.T, typ string, payload any) SyncEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", typ, err)
	}
	return SyncEvent{Type: typ, Data: data}
}

func TestSyncRejectsOversizedBatch(t *testing.T) {
	svc := newSyncFixture(t)
	events := make([]SyncEvent, 101)
	for i := range events {
		events[i] = SyncEvent{Type: "tap_in", Data: json.RawMessage(`{}`)}
	}

	_, err := svc.Process(context.Background(), SyncRequest{Events: events})
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if code := domain.ErrorCode(err); code != domain.CodeBatchTooLarge {
		t.Fatalf("code = %q, want %q", code, domain.CodeBatchTooLarge)
	}
}

func TestSyncRejectsEmptyBatch(t *testing.T) {
	svc := newSyncFixture(t)
	if _, err := svc.Process(context.Background(), SyncRequest{}); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSyncAppliesEventsInOrder(t *testing.T) {
	svc := newSyncFixture(t)

	// A full journey recorded offline: tap-in then tap-out. Order matters;
	// the tap-out can only close a journey the previous event opened.
	res, err := svc.Process(context.Background(), SyncRequest{Events: []SyncEvent{
		rawEvent(t, "tap_in", TapInRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-1"}),
		rawEvent(t, "tap_out", TapOutRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-2"}),
	}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Summary.Success != 2 || res.Summary.Errors != 0 {
		t.Fatalf("summary = %+v, want 2 successes", res.Summary)
	}
}

func TestSyncMixedBatchSummary(t *testing.T) {
	svc := newSyncFixture(t)
	ctx := context.Background()

	// The tap-in was already delivered on a previous sync attempt.
	if _, err := svc.Taps.TapIn(ctx, TapInRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-1"}); err != nil {
		t.Fatalf("seed TapIn: %v", err)
	}

	res, err := svc.Process(ctx, SyncRequest{Events: []SyncEvent{
		rawEvent(t, "tap_in", TapInRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-1"}),
		rawEvent(t, "tap_out", TapOutRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-2"}),
		rawEvent(t, "manual_ticket", ManualTicketRequest{BusID: "bus-1", PassengerCount: 2, OfflineID: "d1-3"}),
	}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Summary.Success != 2 || res.Summary.Duplicate != 1 || res.Summary.Errors != 0 {
		t.Fatalf("summary = %+v, want success=2 duplicate=1 error=0", res.Summary)
	}
	if res.Results[0].Status != SyncStatusDuplicate {
		t.Fatalf("result[0] = %+v, want duplicate", res.Results[0])
	}
}

func TestSyncResultsCarryOfflineID(t *testing.T) {
	svc := newSyncFixture(t)

	res, err := svc.Process(context.Background(), SyncRequest{Events: []SyncEvent{
		rawEvent(t, "tap_in", TapInRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-1"}),
		rawEvent(t, "tap_out", TapOutRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-2"}),
		rawEvent(t, "tap_in", TapInRequest{CardID: "no-such-card", BusID: "bus-1", OfflineID: "d1-3"}),
	}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, want := range []string{"d1-1", "d1-2", "d1-3"} {
		if got := res.Results[i].OfflineID; got != want {
			t.Fatalf("result[%d].OfflineID = %q, want %q", i, got, want)
		}
	}
	if res.Summary.Processed != 3 {
		t.Fatalf("processed = %d, want 3", res.Summary.Processed)
	}
}

func TestSyncFailureDoesNotAbortBatch(t *testing.T) {
	svc := newSyncFixture(t)

	res, err := svc.Process(context.Background(), SyncRequest{Events: []SyncEvent{
		rawEvent(t, "tap_in", TapInRequest{CardID: "no-such-card", BusID: "bus-1", OfflineID: "d1-1"}),
		rawEvent(t, "tap_in", TapInRequest{CardID: "GB-1001", BusID: "bus-1", OfflineID: "d1-2"}),
	}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Summary.Errors != 1 || res.Summary.Success != 1 {
		t.Fatalf("summary = %+v, want one failure and one success", res.Summary)
	}
	if res.Results[0].Code != domain.CodeCardNotFound {
		t.Fatalf("result[0].Code = %q, want %q", res.Results[0].Code, domain.CodeCardNotFound)
	}
	if res.Results[1].Status != SyncStatusSuccess {
		t.Fatalf("result[1] = %+v, want success", res.Results[1])
	}
}

func TestSyncUnknownEventType(t *testing.T) {
	svc := newSyncFixture(t)

	res, err := svc.Process(context.Background(), SyncRequest{Events: []SyncEvent{
		{Type: "teleport", Data: json.RawMessage(`{}`)},
	}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Results[0].Status != SyncStatusError {
		t.Fatalf("result = %+v, want error status", res.Results[0])
	}
}
