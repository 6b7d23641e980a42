package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/http/middleware"
	"greenbus/backend/internal/services"
)

// CreateManualTicket records a paper ticket sold by the operator.
func (d Deps) CreateManualTicket(c *gin.Context) {
	var req services.ManualTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthContext(c)
	req.OperatorID = int64(rc.UserID)

	result, err := d.ticketService(c).Issue(c.Request.Context(), req)
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

// GetTicket returns a manual ticket by id.
func (d Deps) GetTicket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "must be numeric", Err: err})
		return
	}
	ticket, err := d.ticketService(c).FindByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// TicketReceipt streams the printable PDF receipt for a ticket.
func (d Deps) TicketReceipt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "must be numeric", Err: err})
		return
	}
	pdf, filename, err := d.docsService().TicketReceipt(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
