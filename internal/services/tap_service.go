package services

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"greenbus/backend/internal/config"
	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
	"greenbus/backend/internal/utils"
)

// TapService runs the fare-metering state machine: tap-in opens a journey,
// tap-out closes it and settles the fare. Both paths are idempotent on the
// device-generated offline id, so a device replaying its queue after a
// network outage gets its original result back instead of a second charge.
type TapService struct {
	Cards     CardStore
	Journeys  JourneyStore
	Routes    RouteStore
	Fare      config.FareEnv
	RequestID string
}

type TapInRequest struct {
	CardID     string        `json:"card_id" binding:"required"`
	BusID      string        `json:"bus_id" binding:"required"`
	Timestamp  string        `json:"timestamp"`
	Location   *models.Point `json:"location"`
	OfflineID  string        `json:"offline_id"`
	OperatorID int64         `json:"-"`
}

type TapInResult struct {
	JourneyID  int64           `json:"journey_id"`
	CardID     string          `json:"card_id"`
	HolderName string          `json:"holder_name,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	TapInTime  string          `json:"tap_in_time"`
	Duplicate  bool            `json:"duplicate,omitempty"`
}

type TapOutRequest struct {
	CardID     string        `json:"card_id" binding:"required"`
	BusID      string        `json:"bus_id" binding:"required"`
	Timestamp  string        `json:"timestamp"`
	Location   *models.Point `json:"location"`
	OfflineID  string        `json:"offline_id"`
	OperatorID int64         `json:"-"`
}

type TapOutResult struct {
	JourneyID       int64            `json:"journey_id"`
	CardID          string           `json:"card_id"`
	Fare            decimal.Decimal  `json:"fare"`
	DistanceKm      float64          `json:"distance_km"`
	CO2Saved        decimal.Decimal  `json:"co2_saved"`
	PointsEarned    int64            `json:"points_earned"`
	DurationMinutes int64            `json:"duration_minutes"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
	TapOutTime      string           `json:"tap_out_time"`
	Duplicate       bool             `json:"duplicate,omitempty"`
}

// TapIn validates the card and opens a journey on the bus. Preconditions:
// the card exists and is active, its balance covers the configured minimum,
// and no journey is already open for this (card, bus).
func (s TapService) TapIn(ctx context.Context, req TapInRequest) (*TapInResult, error) {
	utils.LogEvent(s.RequestID, "tap", "tap_in", "card="+req.CardID+" bus="+req.BusID)

	if req.OfflineID != "" {
		if prior, err := s.Journeys.FindTapInByOfflineID(ctx, req.OfflineID); err != nil {
			return nil, err
		} else if prior != nil {
			return s.replayTapIn(ctx, prior)
		}
	}

	card, err := s.Cards.FindByCardID(ctx, req.CardID)
	if err != nil {
		return nil, err
	}
	if card.Status != "" && card.Status != "active" {
		return nil, domain.UnauthorizedError{Msg: "card is " + card.Status}
	}
	if _, err := s.Routes.BusByID(ctx, req.BusID); err != nil {
		return nil, err
	}

	// An already-open journey wins over a low balance: the rider needs a
	// tap-out, not a top-up.
	if open, err := s.Journeys.ActiveForCardBus(ctx, card.CardID, req.BusID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, domain.ConflictError{
			Resource: "journey",
			Code:     domain.CodeAlreadyTappedIn,
			Msg:      "card already tapped in on this bus",
		}
	}

	if card.Balance.LessThan(s.Fare.MinTapInBalance) {
		return nil, domain.InsufficientBalanceError{
			Balance:  card.Balance.StringFixed(2),
			Required: s.Fare.MinTapInBalance.StringFixed(2),
		}
	}

	j := &models.Journey{
		CardID:         card.CardID,
		BusID:          req.BusID,
		UserID:         card.UserID,
		OperatorID:     req.OperatorID,
		TapInTime:      utils.ParseTimestamp(req.Timestamp),
		TapInLocation:  req.Location,
		TapInOfflineID: req.OfflineID,
	}
	id, err := s.Journeys.CreateTapIn(ctx, j)
	if domain.IsDuplicateEvent(err) {
		// Lost a replay race: another request applied the same offline id
		// between our pre-check and the insert.
		if prior, perr := s.Journeys.FindTapInByOfflineID(ctx, req.OfflineID); perr == nil && prior != nil {
			return s.replayTapIn(ctx, prior)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return &TapInResult{
		JourneyID:  id,
		CardID:     card.CardID,
		HolderName: card.HolderName,
		Balance:    card.Balance,
		TapInTime:  j.TapInTime.Format(time.RFC3339),
	}, nil
}

// TapOut closes the open journey for (card, bus), computing the fare from
// the haversine distance between the two tap locations. With either
// location missing the configured fallback distance applies.
func (s TapService) TapOut(ctx context.Context, req TapOutRequest) (*TapOutResult, error) {
	utils.LogEvent(s.RequestID, "tap", "tap_out", "card="+req.CardID+" bus="+req.BusID)

	if req.OfflineID != "" {
		if prior, err := s.Journeys.FindClosedByOfflineID(ctx, req.OfflineID); err != nil {
			return nil, err
		} else if prior != nil {
			return replayTapOut(prior), nil
		}
	}

	card, err := s.Cards.FindByCardID(ctx, req.CardID)
	if err != nil {
		return nil, err
	}

	journey, err := s.Journeys.ActiveForCardBus(ctx, card.CardID, req.BusID)
	if err != nil {
		return nil, err
	}
	if journey == nil {
		return nil, domain.NotFoundError{Resource: "active journey", Code: domain.CodeNoActiveJourney}
	}

	distance := s.Fare.FallbackDistanceKm
	if journey.TapInLocation != nil && req.Location != nil {
		distance = utils.HaversineKm(*journey.TapInLocation, *req.Location)
	}

	cfg, found, err := s.Routes.FareForBus(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = models.FareConfig{BaseFare: s.Fare.DefaultBaseFare, FarePerKm: s.Fare.DefaultFarePerKm}
	}
	quote := utils.QuoteFare(cfg, distance)

	tapOutTime := utils.ParseTimestamp(req.Timestamp)
	err = s.Journeys.Close(ctx, models.JourneyClose{
		JourneyID:       journey.ID,
		CardID:          card.CardID,
		UserID:          journey.UserID,
		TapOutTime:      tapOutTime,
		TapOutLocation:  req.Location,
		Fare:            quote.Fare,
		DistanceKm:      quote.DistanceKm,
		CO2Saved:        quote.CO2Saved,
		PointsEarned:    quote.PointsEarned,
		TapOutOfflineID: req.OfflineID,
	})
	if domain.IsDuplicateEvent(err) {
		if prior, perr := s.Journeys.FindClosedByOfflineID(ctx, req.OfflineID); perr == nil && prior != nil {
			return replayTapOut(prior), nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "tap", "journey_closed",
		"journey="+strconv.FormatInt(journey.ID, 10)+" fare="+quote.Fare.StringFixed(2))

	result := &TapOutResult{
		JourneyID:       journey.ID,
		CardID:          card.CardID,
		Fare:            quote.Fare,
		DistanceKm:      quote.DistanceKm,
		CO2Saved:        quote.CO2Saved,
		PointsEarned:    quote.PointsEarned,
		DurationMinutes: journeyMinutes(journey.TapInTime, tapOutTime),
		TapOutTime:      tapOutTime.Format(time.RFC3339),
	}
	if after, err := s.Cards.FindByCardID(ctx, card.CardID); err == nil {
		result.Balance = &after.Balance
	}
	return result, nil
}

func (s TapService) replayTapIn(ctx context.Context, j *models.Journey) (*TapInResult, error) {
	res := &TapInResult{
		JourneyID: j.ID,
		CardID:    j.CardID,
		TapInTime: j.TapInTime.Format(time.RFC3339),
		Duplicate: true,
	}
	if card, err := s.Cards.FindByCardID(ctx, j.CardID); err == nil {
		res.HolderName = card.HolderName
		res.Balance = card.Balance
	}
	return res, nil
}

func replayTapOut(j *models.Journey) *TapOutResult {
	res := &TapOutResult{
		JourneyID: j.ID,
		CardID:    j.CardID,
		Duplicate: true,
	}
	if j.Fare != nil {
		res.Fare = *j.Fare
	}
	if j.DistanceKm != nil {
		res.DistanceKm = *j.DistanceKm
	}
	if j.CO2Saved != nil {
		res.CO2Saved = *j.CO2Saved
	}
	if j.PointsEarned != nil {
		res.PointsEarned = *j.PointsEarned
	}
	if j.TapOutTime != nil {
		res.TapOutTime = j.TapOutTime.Format(time.RFC3339)
		res.DurationMinutes = journeyMinutes(j.TapInTime, *j.TapOutTime)
	}
	return res
}

// journeyMinutes reports elapsed whole minutes, never negative. Device
// clocks drift, so a tap-out stamped before the tap-in collapses to zero.
func journeyMinutes(in, out time.Time) int64 {
	mins := int64(out.Sub(in).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}
