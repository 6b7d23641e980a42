package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/http/middleware"
	"greenbus/backend/internal/services"
)

// GetCard returns the wallet snapshot for a card.
func (d Deps) GetCard(c *gin.Context) {
	card, err := d.cardService(c).Snapshot(c.Request.Context(), c.Param("card_id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// TopUp credits a card wallet.
func (d Deps) TopUp(c *gin.Context) {
	var req services.TopUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)

	change, err := d.cardService(c).TopUp(c.Request.Context(), req, rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// AdminAdjustBalance applies a signed balance correction with an audit
// trail entry.
func (d Deps) AdminAdjustBalance(c *gin.Context) {
	var req services.AdjustBalanceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)

	change, err := d.cardService(c).AdjustBalance(c.Request.Context(), req, rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}
