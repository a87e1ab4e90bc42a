package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

const bookingDateLayout = "2006-01-02"

type requestBookingRequest struct {
	ListingID string `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h BookingHandler) Create(c *gin.Context) {
	principal, ok := requireRole(c, "guest")
	if !ok {
		return
	}
	var req requestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	start, err := time.Parse(bookingDateLayout, req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "booking_invalid_range", "start_date must be formatted YYYY-MM-DD")
		return
	}
	end, err := time.Parse(bookingDateLayout, req.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "booking_invalid_range", "end_date must be formatted YYYY-MM-DD")
		return
	}

	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		GuestID:         principal.ID,
		StartDate:       start,
		EndDate:         end,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) List(c *gin.Context) {
	principal, ok := requireRole(c, "guest")
	if !ok {
		return
	}
	query := bookingapp.ListGuestBookingsQuery{GuestID: principal.ID}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
