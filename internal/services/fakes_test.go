package services

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

// In-memory stores used by the service tests. They enforce the same
// uniqueness rules the MySQL schema does, under a mutex, so the
// concurrency tests exercise real mutual exclusion.

type fakeCards struct {
	mu    sync.Mutex
	cards map[string]models.Card
	txns  []models.Transaction
}

func newFakeCards(cards ...models.Card) *fakeCards {
	f := &fakeCards{cards: map[string]models.Card{}}
	for _, c := range cards {
		f.cards[strings.ToLower(c.CardID)] = c
	}
	return f
}

func (f *fakeCards) FindByCardID(ctx context.Context, cardID string) (models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[strings.ToLower(cardID)]
	if !ok {
		return models.Card{}, domain.NotFoundError{Resource: "card", Code: domain.CodeCardNotFound}
	}
	return c, nil
}

func (f *fakeCards) ApplyDelta(ctx context.Context, delta models.WalletDelta) (models.BalanceChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(delta.CardID)
	c, ok := f.cards[key]
	if !ok {
		return models.BalanceChange{}, domain.NotFoundError{Resource: "card", Code: domain.CodeCardNotFound}
	}
	prev := c.Balance
	next := prev.Add(delta.Amount)
	if next.IsNegative() {
		next = decimal.Zero
	}
	c.Balance = next
	c.Points += delta.Points
	c.CO2Saved = c.CO2Saved.Add(delta.CO2Saved)
	f.cards[key] = c
	f.txns = append(f.txns, models.Transaction{
		UserID:      c.UserID,
		CardID:      c.CardID,
		Amount:      delta.Amount,
		Type:        delta.TxnType,
		Description: delta.Description,
	})
	return models.BalanceChange{CardID: c.CardID, PreviousBalance: prev, NewBalance: next}, nil
}

type fakeJourneys struct {
	mu        sync.Mutex
	nextID    int64
	journeys  map[int64]*models.Journey
	tapInIDs  map[string]int64
	tapOutIDs map[string]int64
	cards     *fakeCards
}

func newFakeJourneys(cards *fakeCards) *fakeJourneys {
	return &fakeJourneys{
		journeys:  map[int64]*models.Journey{},
		tapInIDs:  map[string]int64{},
		tapOutIDs: map[string]int64{},
		cards:     cards,
	}
}

func (f *fakeJourneys) ActiveForCardBus(ctx context.Context, cardID, busID string) (*models.Journey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openLocked(cardID, busID), nil
}

func (f *fakeJourneys) openLocked(cardID, busID string) *models.Journey {
	for _, j := range f.journeys {
		if j.CardID == cardID && j.BusID == busID && j.Open() {
			cp := *j
			return &cp
		}
	}
	return nil
}

func (f *fakeJourneys) FindTapInByOfflineID(ctx context.Context, offlineID string) (*models.Journey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.tapInIDs[offlineID]; ok {
		cp := *f.journeys[id]
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeJourneys) FindClosedByOfflineID(ctx context.Context, offlineID string) (*models.Journey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.tapOutIDs[offlineID]; ok {
		cp := *f.journeys[id]
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeJourneys) CreateTapIn(ctx context.Context, j *models.Journey) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j.TapInOfflineID != "" {
		if _, ok := f.tapInIDs[j.TapInOfflineID]; ok {
			return 0, domain.ConflictError{Resource: "offline event", Code: domain.CodeDuplicateEvent}
		}
	}
	if f.openLocked(j.CardID, j.BusID) != nil {
		return 0, domain.ConflictError{Resource: "journey", Code: domain.CodeAlreadyTappedIn}
	}
	f.nextID++
	cp := *j
	cp.ID = f.nextID
	f.journeys[cp.ID] = &cp
	if cp.TapInOfflineID != "" {
		f.tapInIDs[cp.TapInOfflineID] = cp.ID
	}
	return cp.ID, nil
}

func (f *fakeJourneys) Close(ctx context.Context, cl models.JourneyClose) error {
	f.mu.Lock()
	j, ok := f.journeys[cl.JourneyID]
	if !ok || !j.Open() {
		f.mu.Unlock()
		return domain.NotFoundError{Resource: "active journey", Code: domain.CodeNoActiveJourney}
	}
	if cl.TapOutOfflineID != "" {
		if _, dup := f.tapOutIDs[cl.TapOutOfflineID]; dup {
			f.mu.Unlock()
			return domain.ConflictError{Resource: "offline event", Code: domain.CodeDuplicateEvent}
		}
	}
	t := cl.TapOutTime
	fare := cl.Fare
	dist := cl.DistanceKm
	co2 := cl.CO2Saved
	pts := cl.PointsEarned
	j.TapOutTime = &t
	j.TapOutLocation = cl.TapOutLocation
	j.Fare = &fare
	j.DistanceKm = &dist
	j.CO2Saved = &co2
	j.PointsEarned = &pts
	j.TapOutOfflineID = cl.TapOutOfflineID
	if cl.TapOutOfflineID != "" {
		f.tapOutIDs[cl.TapOutOfflineID] = j.ID
	}
	f.mu.Unlock()

	if f.cards != nil {
		_, err := f.cards.ApplyDelta(ctx, models.WalletDelta{
			CardID:   cl.CardID,
			Amount:   cl.Fare.Neg(),
			Points:   cl.PointsEarned,
			CO2Saved: cl.CO2Saved,
			TxnType:  models.TxnJourneyFare,
		})
		return err
	}
	return nil
}

type fakeRoutes struct {
	buses map[string]models.Bus
	fares map[string]models.FareConfig
}

func newFakeRoutes() *fakeRoutes {
	return &fakeRoutes{buses: map[string]models.Bus{}, fares: map[string]models.FareConfig{}}
}

func (f *fakeRoutes) addBus(b models.Bus, cfg *models.FareConfig) {
	f.buses[b.ID] = b
	if cfg != nil {
		f.fares[b.ID] = *cfg
	}
}

func (f *fakeRoutes) FareForBus(ctx context.Context, busID string) (models.FareConfig, bool, error) {
	cfg, ok := f.fares[busID]
	return cfg, ok, nil
}

func (f *fakeRoutes) BusByID(ctx context.Context, busID string) (*models.Bus, error) {
	b, ok := f.buses[busID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "bus", Code: domain.CodeBusNotFound}
	}
	return &b, nil
}

type fakeTickets struct {
	mu         sync.Mutex
	nextID     int64
	tickets    map[int64]*models.ManualTicket
	offlineIDs map[string]int64
	bookings   *fakeBookings
}

func newFakeTickets(bookings *fakeBookings) *fakeTickets {
	return &fakeTickets{tickets: map[int64]*models.ManualTicket{}, offlineIDs: map[string]int64{}, bookings: bookings}
}

func (f *fakeTickets) Create(ctx context.Context, t *models.ManualTicket, reservation *models.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.OfflineID != "" {
		if _, ok := f.offlineIDs[t.OfflineID]; ok {
			return 0, domain.ConflictError{Resource: "offline event", Code: domain.CodeDuplicateEvent}
		}
	}
	if reservation != nil && f.bookings != nil {
		id, err := f.bookings.Create(ctx, reservation)
		if err != nil {
			return 0, err
		}
		t.BookingID = &id
	}
	f.nextID++
	cp := *t
	cp.ID = f.nextID
	f.tickets[cp.ID] = &cp
	t.ID = cp.ID
	if cp.OfflineID != "" {
		f.offlineIDs[cp.OfflineID] = cp.ID
	}
	return cp.ID, nil
}

func (f *fakeTickets) FindByOfflineID(ctx context.Context, offlineID string) (*models.ManualTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.offlineIDs[offlineID]; ok {
		cp := *f.tickets[id]
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeTickets) FindByID(ctx context.Context, id int64) (*models.ManualTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "ticket"}
	}
	cp := *t
	return &cp, nil
}

type seatKey struct {
	busID  string
	date   string
	seatNo int
}

type fakeBookings struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*models.Booking
	held     map[seatKey]int64
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: map[int64]*models.Booking{}, held: map[seatKey]int64{}}
}

func (f *fakeBookings) Create(ctx context.Context, b *models.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.SeatNo != nil {
		key := seatKey{b.BusID, b.TravelDate, *b.SeatNo}
		if _, taken := f.held[key]; taken {
			return 0, domain.ConflictError{Resource: "seat", Code: domain.CodeSeatTaken}
		}
		f.nextID++
		f.held[key] = f.nextID
	} else {
		f.nextID++
	}
	cp := *b
	cp.ID = f.nextID
	f.bookings[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeBookings) ListForBus(ctx context.Context, busID, travelDate string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Booking{}
	for _, b := range f.bookings {
		if b.BusID != busID || b.Status == models.BookingStatusCancelled || b.Status == models.BookingStatusCompleted {
			continue
		}
		if travelDate != "" && b.TravelDate != travelDate {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookings) ReleaseAtStop(ctx context.Context, busID, stopName string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.BusID == busID && b.DropStop == stopName && activeStatus(b.Status) {
			b.Status = models.BookingStatusCompleted
			f.releaseSeatLocked(b)
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) CompleteTrip(ctx context.Context, busID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.BusID == busID && activeStatus(b.Status) {
			b.Status = models.BookingStatusCompleted
			f.releaseSeatLocked(b)
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) releaseSeatLocked(b *models.Booking) {
	if b.SeatNo != nil {
		delete(f.held, seatKey{b.BusID, b.TravelDate, *b.SeatNo})
	}
}

func activeStatus(s string) bool {
	return s == models.BookingStatusBooked || s == models.BookingStatusConfirmed || s == models.BookingStatusOccupied
}

type fakeUsers struct {
	users map[string]models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]models.User{}}
	for _, u := range users {
		f.users[strings.ToLower(u.Email)] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	return &u, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "user"}
}
