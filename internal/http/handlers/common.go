package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/config"
	"greenbus/backend/internal/http/middleware"
	"greenbus/backend/internal/repositories"
	"greenbus/backend/internal/services"
)

// Deps wires the repositories and environment into the handlers. Services
// are built per request so each carries the request id into its logs.
type Deps struct {
	DB       *sql.DB
	Env      config.Env
	Cards    repositories.CardRepository
	Journeys repositories.JourneyRepository
	Tickets  repositories.TicketRepository
	Bookings repositories.BookingRepository
	Routes   repositories.RouteRepository
	Users    repositories.UserRepository
}

func NewDeps(db *sql.DB, env config.Env) Deps {
	return Deps{
		DB:       db,
		Env:      env,
		Cards:    repositories.CardRepository{DB: db},
		Journeys: repositories.JourneyRepository{DB: db},
		Tickets:  repositories.TicketRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		Routes:   repositories.RouteRepository{DB: db},
		Users:    repositories.UserRepository{DB: db},
	}
}

func (d Deps) tapService(c *gin.Context) services.TapService {
	return services.TapService{
		Cards:     d.Cards,
		Journeys:  d.Journeys,
		Routes:    d.Routes,
		Fare:      d.Env.Fare,
		RequestID: middleware.GetRequestID(c),
	}
}

func (d Deps) ticketService(c *gin.Context) services.TicketService {
	return services.TicketService{
		Tickets:   d.Tickets,
		Routes:    d.Routes,
		Fare:      d.Env.Fare,
		RequestID: middleware.GetRequestID(c),
	}
}

func (d Deps) syncService(c *gin.Context) services.SyncService {
	return services.SyncService{
		Taps:      d.tapService(c),
		Tickets:   d.ticketService(c),
		MaxBatch:  d.Env.MaxSyncBatch,
		RequestID: middleware.GetRequestID(c),
	}
}

func (d Deps) bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:  d.Bookings,
		Routes:    d.Routes,
		Fare:      d.Env.Fare,
		RequestID: middleware.GetRequestID(c),
	}
}

func (d Deps) cardService(c *gin.Context) services.CardService {
	return services.CardService{
		Cards:     d.Cards,
		RequestID: middleware.GetRequestID(c),
	}
}

func (d Deps) authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		Users:     d.Users,
		Secret:    d.Env.JWTSecret,
		RequestID: middleware.GetRequestID(c),
	}
}

func (d Deps) docsService() services.DocsService {
	return services.DocsService{Tickets: d.Tickets, Routes: d.Routes}
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}
