package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const (
	listHostBookingsKey    = "host.bookings.list"
	allStatusesFilterValue = "all"
)

type ListHostBookingsQuery struct {
	HostID string
	Status string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.BookingCollection{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	hostListings, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{Host: domainlistings.HostID(hostID)})
	if err != nil {
		return dto.BookingCollection{}, err
	}

	// No filter means every status: resolved bookings stay visible to the
	// host alongside pending ones.
	statusFilter := strings.ToLower(strings.TrimSpace(q.Status))
	allStatuses := statusFilter == "" || statusFilter == allStatusesFilterValue

	items := make([]dto.BookingSummary, 0)
	for _, listing := range hostListings {
		bookings, err := unit.Bookings().ListByListing(execCtx, listing.ID)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		for _, b := range bookings {
			if !allStatuses && string(b.Status) != statusFilter {
				continue
			}
			items = append(items, dto.MapHostBookingSummary(b, listing))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "count", len(items), "status", statusFilter)
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.BookingCollection] = (*ListHostBookingsHandler)(nil)
