package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const listHostListingsKey = "host.listings.list"

type ListHostListingsQuery struct {
	HostID string
}

func (q ListHostListingsQuery) Key() string { return listHostListingsKey }

type ListHostListingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.ListingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.ListingCollection{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		Host:        domainlistings.HostID(hostID),
		OldestFirst: true,
	})
	if err != nil {
		return dto.ListingCollection{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("host listings listed", "host_id", hostID, "count", len(items))
	}
	return dto.MapListingCollection(items), nil
}

var _ queries.Handler[ListHostListingsQuery, dto.ListingCollection] = (*ListHostListingsHandler)(nil)
