package availability

import (
	"context"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/policy"
)

const getCalendarKey = "host.availability.get"

type GetCalendarQuery struct {
	HostID    string
	ListingID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.CalendarView, error) {
	if strings.TrimSpace(q.ListingID) == "" {
		return dto.CalendarView{}, domainlistings.ErrNotFound
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.CalendarView{}, err
	}
	if !policy.IsOwnerOfListing(q.HostID, listing) {
		return dto.CalendarView{}, domainavailability.ErrNotOwner
	}

	cal, err := unit.Availability().Calendar(execCtx, listing.ID)
	if err != nil {
		return dto.CalendarView{}, err
	}
	if cal == nil {
		cal = domainavailability.NewCalendar(listing.ID)
	}
	return dto.MapCalendarView(cal), nil
}

var _ queries.Handler[GetCalendarQuery, dto.CalendarView] = (*GetCalendarHandler)(nil)
