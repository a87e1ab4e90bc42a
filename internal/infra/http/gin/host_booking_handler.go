package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

type HostBookingHTTP interface {
	List(c *gin.Context)
	Approve(c *gin.Context)
	Decline(c *gin.Context)
}

type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostBookingHandler) List(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	query := bookingapp.ListHostBookingsQuery{HostID: principal.ID, Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Approve(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := bookingapp.ApproveBookingCommand{HostID: principal.ID, BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.ApproveBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Decline(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := bookingapp.DeclineBookingCommand{HostID: principal.ID, BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.DeclineBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostBookingHTTP = HostBookingHandler{}
