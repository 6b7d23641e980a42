package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/http/middleware"
	"greenbus/backend/internal/services"
)

// TapIn records an NFC tap-in and opens a journey.
func (d Deps) TapIn(c *gin.Context) {
	var req services.TapInRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)
	req.OperatorID = int64(rc.UserID)

	result, err := d.tapService(c).TapIn(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// TapOut closes the rider's open journey on the bus and settles the fare.
func (d Deps) TapOut(c *gin.Context) {
	var req services.TapOutRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)
	req.OperatorID = int64(rc.UserID)

	result, err := d.tapService(c).TapOut(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Sync replays a device's offline event queue in order.
func (d Deps) Sync(c *gin.Context) {
	var req services.SyncRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)
	req.OperatorID = int64(rc.UserID)

	result, err := d.syncService(c).Process(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
