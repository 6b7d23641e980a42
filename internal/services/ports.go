package services

import (
	"context"

	"greenbus/backend/internal/domain/models"
)

// The services depend on these store interfaces rather than the concrete
// MySQL repositories so tests can substitute in-memory fakes. The
// repositories package implements every one of them.

type CardStore interface {
	FindByCardID(ctx context.Context, cardID string) (models.Card, error)
	ApplyDelta(ctx context.Context, delta models.WalletDelta) (models.BalanceChange, error)
}

type JourneyStore interface {
	ActiveForCardBus(ctx context.Context, cardID, busID string) (*models.Journey, error)
	FindTapInByOfflineID(ctx context.Context, offlineID string) (*models.Journey, error)
	FindClosedByOfflineID(ctx context.Context, offlineID string) (*models.Journey, error)
	CreateTapIn(ctx context.Context, j *models.Journey) (int64, error)
	Close(ctx context.Context, cl models.JourneyClose) error
}

type TicketStore interface {
	Create(ctx context.Context, t *models.ManualTicket, reservation *models.Booking) (int64, error)
	FindByOfflineID(ctx context.Context, offlineID string) (*models.ManualTicket, error)
	FindByID(ctx context.Context, id int64) (*models.ManualTicket, error)
}

type ReservationStore interface {
	Create(ctx context.Context, b *models.Booking) (int64, error)
	ListForBus(ctx context.Context, busID, travelDate string) ([]models.Booking, error)
	ReleaseAtStop(ctx context.Context, busID, stopName string) (int64, error)
	CompleteTrip(ctx context.Context, busID string) (int64, error)
}

type RouteStore interface {
	FareForBus(ctx context.Context, busID string) (models.FareConfig, bool, error)
	BusByID(ctx context.Context, busID string) (*models.Bus, error)
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}
