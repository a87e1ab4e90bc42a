package listings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const createListingKey = "host.listings.create"

type CreateListingCommand struct {
	CommandID       string
	HostID          string
	Name            string
	Description     string
	Location        string
	PricePerNight   string
	IdempotencyKeyV string
}

func (c CreateListingCommand) Key() string { return createListingKey }

func (c CreateListingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateListingCommand) ResultPrototype() any { return &CreateListingResult{} }

// Validate runs before the transaction opens.
func (c CreateListingCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return domainlistings.ErrNameRequired
	}
	if strings.TrimSpace(c.Location) == "" {
		return domainlistings.ErrLocationRequired
	}
	return nil
}

type CreateListingResult struct {
	ListingID string `json:"listing_id"`
}

type CreateListingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*CreateListingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	price, err := decimal.NewFromString(cmd.PricePerNight)
	if err != nil {
		return nil, domainlistings.ErrInvalidPrice
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:            domainlistings.ListingID(cmd.CommandID),
		Host:          domainlistings.HostID(cmd.HostID),
		Name:          cmd.Name,
		Description:   cmd.Description,
		Location:      cmd.Location,
		PricePerNight: price,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "host_id", cmd.HostID, "location", listing.Location)
	}

	return &CreateListingResult{ListingID: string(listing.ID)}, nil
}

func (h *CreateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateListingCommand, *CreateListingResult] = (*CreateListingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateListingCommand)(nil)
