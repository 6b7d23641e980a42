package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/services"
)

// Login exchanges credentials for a JWT.
func (d Deps) Login(c *gin.Context) {
	var req services.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	result, err := d.authService(c).Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
