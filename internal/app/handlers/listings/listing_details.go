package listings

import (
	"context"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const listingDetailsKey = "guest.listings.details"

type ListingDetailsQuery struct {
	ListingID string
}

func (q ListingDetailsQuery) Key() string { return listingDetailsKey }

type ListingDetailsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListingDetailsHandler) Handle(ctx context.Context, q ListingDetailsQuery) (dto.ListingDetails, error) {
	if strings.TrimSpace(q.ListingID) == "" {
		return dto.ListingDetails{}, domainlistings.ErrNotFound
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetails{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingDetails{}, err
	}

	details := dto.MapListingDetails(listing)
	cal, err := unit.Availability().Calendar(execCtx, listing.ID)
	if err != nil {
		return dto.ListingDetails{}, err
	}
	if cal != nil {
		details.Availability = dto.MapCalendarView(cal).Entries
	}
	return details, nil
}

var _ queries.Handler[ListingDetailsQuery, dto.ListingDetails] = (*ListingDetailsHandler)(nil)
