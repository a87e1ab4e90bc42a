package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	"staybook/internal/app/queries"
)

type AvailabilityHTTP interface {
	Get(c *gin.Context)
	Set(c *gin.Context)
}

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

const availabilityDateLayout = "2006-01-02"

type setAvailabilityRequest struct {
	Date      string `json:"date"`
	Available *bool  `json:"available"`
}

func (h AvailabilityHandler) Get(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	query := availabilityapp.GetCalendarQuery{HostID: principal.ID, ListingID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.CalendarView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Set(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Available == nil {
		respondError(c, http.StatusBadRequest, "availability_flag_required", "available flag is required")
		return
	}
	date, err := time.Parse(availabilityDateLayout, req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "availability_invalid_date", "date must be formatted YYYY-MM-DD")
		return
	}

	cmd := availabilityapp.SetAvailabilityCommand{
		HostID:    principal.ID,
		ListingID: c.Param("id"),
		Date:      date,
		Available: *req.Available,
	}
	result, err := commands.Dispatch[availabilityapp.SetAvailabilityCommand, *availabilityapp.SetAvailabilityResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
