package availability

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/policy"
)

const setAvailabilityKey = "host.availability.set"

type SetAvailabilityCommand struct {
	HostID    string
	ListingID string
	Date      time.Time
	Available bool
}

func (c SetAvailabilityCommand) Key() string { return setAvailabilityKey }

type SetAvailabilityResult struct {
	ListingID string `json:"listing_id"`
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// SetAvailabilityHandler upserts the flag for one calendar day. Repeating
// the call replaces the flag rather than adding a second entry.
type SetAvailabilityHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*SetAvailabilityResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.ListingID) == "" {
		return nil, domainlistings.ErrNotFound
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !policy.IsOwnerOfListing(cmd.HostID, listing) {
		return nil, domainavailability.ErrNotOwner
	}

	cal, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		cal = domainavailability.NewCalendar(listing.ID)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	entry, err := cal.Set(cmd.Date, cmd.Available, now)
	if err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return nil, err
	}

	pending := cal.PendingEvents()
	cal.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("availability set", "listing_id", listing.ID, "date", entry.Date.Format("2006-01-02"), "available", entry.Available)
	}

	return &SetAvailabilityResult{
		ListingID: string(listing.ID),
		Date:      entry.Date.Format("2006-01-02"),
		Available: entry.Available,
	}, nil
}

func (h *SetAvailabilityHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SetAvailabilityCommand, *SetAvailabilityResult] = (*SetAvailabilityHandler)(nil)
