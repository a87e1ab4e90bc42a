package listings

import (
	"context"
	"log/slog"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const searchListingsKey = "guest.listings.search"

type SearchListingsQuery struct {
	Location string
	Limit    int
	Offset   int
}

func (q SearchListingsQuery) Key() string { return searchListingsKey }

type SearchListingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) (dto.ListingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		Location: q.Location,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return dto.ListingCollection{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("listings searched", "location", q.Location, "count", len(items))
	}
	return dto.MapListingCollection(items), nil
}

var _ queries.Handler[SearchListingsQuery, dto.ListingCollection] = (*SearchListingsHandler)(nil)
