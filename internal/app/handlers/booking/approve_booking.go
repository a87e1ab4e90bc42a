package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/policy"
)

const approveBookingKey = "host.bookings.approve"

type ApproveBookingCommand struct {
	HostID    string
	BookingID string
}

func (c ApproveBookingCommand) Key() string { return approveBookingKey }

type BookingActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ApproveBookingHandler grants a pending booking and blocks its dates.
// Everything runs inside one unit of work: the approved-overlap check, the
// calendar check, the status flip, and the calendar write commit together or
// not at all. Concurrent approvals of overlapping requests are serialized by
// the versioned saves; the loser surfaces as a conflict.
type ApproveBookingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *ApproveBookingHandler) Handle(ctx context.Context, cmd ApproveBookingCommand) (*BookingActionResult, error) {
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
	// A host probing another host's booking gets the same answer as a
	// missing one.
	if !policy.IsOwnerOfListing(cmd.HostID, listing) {
		return nil, domainbooking.ErrNotFound
	}

	overlapping, err := unit.Bookings().ApprovedOverlapping(ctx, booking.ListingID, booking.Range)
	if err != nil {
		return nil, err
	}
	for _, other := range overlapping {
		if other.ID != booking.ID {
			return nil, domainbooking.ErrOverlap
		}
	}

	cal, err := unit.Availability().Calendar(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		cal = domainavailability.NewCalendar(booking.ListingID)
	}
	if !cal.CanReserve(booking.Range) {
		return nil, domainbooking.ErrOverlap
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := booking.Approve(now); err != nil {
		return nil, err
	}
	cal.BlockRange(booking.Range, now)

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	pending = append(pending, cal.PendingEvents()...)
	cal.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking approved", "booking_id", booking.ID, "listing_id", booking.ListingID, "host_id", cmd.HostID)
	}

	return &BookingActionResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}

func (h *ApproveBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ApproveBookingCommand, *BookingActionResult] = (*ApproveBookingHandler)(nil)
