package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/http/middleware"
	"greenbus/backend/internal/services"
)

// BookSeat reserves a seat for the authenticated rider.
func (d Deps) BookSeat(c *gin.Context) {
	var req services.BookSeatRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)

	booking, err := d.bookingService(c).BookSeat(c.Request.Context(), req, rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// SupervisorBookings returns the seat map for a bus, optionally filtered
// by travel date.
func (d Deps) SupervisorBookings(c *gin.Context) {
	busID := c.Query("bus_id")
	if busID == "" {
		RespondDomainError(c, domain.ValidationError{Field: "bus_id", Msg: "is required"})
		return
	}
	seatMap, err := d.bookingService(c).SeatMapForBus(c.Request.Context(), busID, c.Query("date"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}

type arriveRequest struct {
	Stop string `json:"stop" binding:"required"`
}

// DriverArrive frees the seats dropping at the stop the bus reached.
func (d Deps) DriverArrive(c *gin.Context) {
	var req arriveRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	released, err := d.bookingService(c).ArriveAtStop(c.Request.Context(), c.Param("id"), req.Stop)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released_seats": released})
}

// DriverComplete frees every remaining seat at the end of the route run.
func (d Deps) DriverComplete(c *gin.Context) {
	released, err := d.bookingService(c).CompleteTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released_seats": released})
}
