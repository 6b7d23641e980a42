package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/http/middleware"
)

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. The code field
// carries the stable machine-readable codes capture devices branch on.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	switch {
	case domain.IsValidation(err):
		if code == "" {
			code = "validation_error"
		}
		respondError(c, http.StatusBadRequest, code, err.Error())
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case domain.IsInsufficientBalance(err):
		respondError(c, http.StatusPaymentRequired, code, err.Error())
	case domain.IsNotFound(err):
		if code == "" {
			code = "not_found"
		}
		respondError(c, http.StatusNotFound, code, err.Error())
	case domain.IsConflict(err):
		if code == "" {
			code = "conflict"
		}
		respondError(c, http.StatusConflict, code, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
