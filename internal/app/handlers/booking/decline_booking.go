package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/policy"
)

const declineBookingKey = "host.bookings.decline"

type DeclineBookingCommand struct {
	HostID    string
	BookingID string
}

func (c DeclineBookingCommand) Key() string { return declineBookingKey }

type DeclineBookingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *DeclineBookingHandler) Handle(ctx context.Context, cmd DeclineBookingCommand) (*BookingActionResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.BookingID) == "" {
		return nil, domainbooking.ErrNotFound
	}

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if !policy.IsOwnerOfListing(cmd.HostID, listing) {
		return nil, domainbooking.ErrNotFound
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := booking.Decline(now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking declined", "booking_id", booking.ID, "listing_id", booking.ListingID, "host_id", cmd.HostID)
	}

	return &BookingActionResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}

func (h *DeclineBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[DeclineBookingCommand, *BookingActionResult] = (*DeclineBookingHandler)(nil)
