package admin

import (
	"context"
	"errors"
	"log/slog"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/user"
)

const listAllListingsKey = "admin.listings.list"

type ListAllListingsQuery struct {
	Limit  int
	Offset int
}

func (q ListAllListingsQuery) Key() string { return listAllListingsKey }

type ListAllListingsHandler struct {
	UoWFactory uow.UoWFactory
	Users      user.Repository
	Logger     *slog.Logger
}

func (h *ListAllListingsHandler) Handle(ctx context.Context, q ListAllListingsQuery) (dto.AdminListingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AdminListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return dto.AdminListingCollection{}, err
	}

	out := dto.AdminListingCollection{Items: make([]dto.AdminListingRow, 0, len(items))}
	hosts := make(map[user.ID]*user.User)
	for _, l := range items {
		row := dto.AdminListingRow{ListingSummary: dto.MapListingSummary(l)}
		hostID := user.ID(l.Host)
		host, ok := hosts[hostID]
		if !ok && h.Users != nil {
			host, err = h.Users.ByID(ctx, hostID)
			if err != nil && !errors.Is(err, user.ErrNotFound) {
				return dto.AdminListingCollection{}, err
			}
			hosts[hostID] = host
		}
		if host != nil {
			row.HostName = host.Name
			row.HostEmail = host.Email
		}
		out.Items = append(out.Items, row)
	}

	if h.Logger != nil {
		h.Logger.Debug("all listings listed", "count", len(out.Items))
	}
	return out, nil
}

var _ queries.Handler[ListAllListingsQuery, dto.AdminListingCollection] = (*ListAllListingsHandler)(nil)
