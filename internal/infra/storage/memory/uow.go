package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

// Factory wires the in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo     *ListingRepository
	BookingRepo      *BookingRepository
	AvailabilityRepo *AvailabilityRepository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a buffered transaction. Writes are staged inside the unit and
// reads see the unit's own staged state; nothing reaches the shared stores
// until Commit, which applies every staged write under one lock or none of
// them.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.BookingRepo == nil || f.AvailabilityRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		factory:   f,
		listings:  &stagedListings{store: f.ListingsRepo, staged: make(map[domainlistings.ListingID]*domainlistings.Listing)},
		bookings:  &stagedBookings{store: f.BookingRepo, staged: make(map[domainbooking.BookingID]*domainbooking.Booking)},
		calendars: &stagedCalendars{store: f.AvailabilityRepo, staged: make(map[domainlistings.ListingID]*domainavailability.Calendar)},
	}, nil
}

// Unit is a uow.UnitOfWork over the in-memory stores with write buffering.
type Unit struct {
	factory   Factory
	listings  *stagedListings
	bookings  *stagedBookings
	calendars *stagedCalendars
	closed    bool
}

func (u *Unit) Listings() domainlistings.ListingRepository {
	return u.listings
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.calendars
}

// Commit applies the staged writes. Every version check runs before the
// first write lands, so a unit that lost a race leaves the stores untouched.
func (u *Unit) Commit(ctx context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true

	lr := u.factory.ListingsRepo
	br := u.factory.BookingRepo
	ar := u.factory.AvailabilityRepo
	lr.mu.Lock()
	defer lr.mu.Unlock()
	br.mu.Lock()
	defer br.mu.Unlock()
	ar.mu.Lock()
	defer ar.mu.Unlock()

	for id, l := range u.listings.staged {
		if current, ok := lr.items[id]; ok && current.Version != l.Version {
			return uow.ErrConcurrentUpdate
		}
	}
	for id, b := range u.bookings.staged {
		if current, ok := br.items[id]; ok && current.Version != b.Version {
			return uow.ErrConcurrentUpdate
		}
	}
	for id, cal := range u.calendars.staged {
		if current, ok := ar.calendars[id]; ok && current.Version != cal.Version {
			return uow.ErrConcurrentUpdate
		}
	}

	for id, l := range u.listings.staged {
		stored := cloneListing(l)
		stored.Version++
		lr.items[id] = stored
	}
	for id, b := range u.bookings.staged {
		stored := cloneBooking(b)
		stored.Version++
		br.items[id] = stored
	}
	for id, cal := range u.calendars.staged {
		stored := cloneCalendar(cal)
		stored.Version++
		ar.calendars[id] = stored
	}
	return nil
}

// Rollback discards everything staged in this unit.
func (u *Unit) Rollback(ctx context.Context) error {
	u.closed = true
	clear(u.listings.staged)
	clear(u.bookings.staged)
	clear(u.calendars.staged)
	return nil
}

// stagedListings overlays the unit's pending listing writes on the store.
type stagedListings struct {
	store  *ListingRepository
	staged map[domainlistings.ListingID]*domainlistings.Listing
}

func (s *stagedListings) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if l, ok := s.staged[id]; ok {
		return cloneListing(l), nil
	}
	return s.store.ByID(ctx, id)
}

func (s *stagedListings) Save(ctx context.Context, listing *domainlistings.Listing) error {
	s.staged[listing.ID] = cloneListing(listing)
	return nil
}

func (s *stagedListings) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	items, err := s.store.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(s.staged) == 0 {
		return items, nil
	}

	opts := params.Normalized()
	present := make(map[domainlistings.ListingID]int, len(items))
	for i, l := range items {
		present[l.ID] = i
	}
	for id, l := range s.staged {
		if opts.Host != "" && l.Host != opts.Host {
			continue
		}
		if !l.MatchesLocation(opts.Location) {
			continue
		}
		if i, ok := present[id]; ok {
			items[i] = cloneListing(l)
		} else {
			items = append(items, cloneListing(l))
		}
	}
	sortListings(items, opts.OldestFirst)
	return items, nil
}

// stagedBookings overlays the unit's pending booking writes on the store.
type stagedBookings struct {
	store  *BookingRepository
	staged map[domainbooking.BookingID]*domainbooking.Booking
}

func (s *stagedBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if b, ok := s.staged[id]; ok {
		return cloneBooking(b), nil
	}
	return s.store.ByID(ctx, id)
}

func (s *stagedBookings) Save(ctx context.Context, booking *domainbooking.Booking) error {
	s.staged[booking.ID] = cloneBooking(booking)
	return nil
}

func (s *stagedBookings) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	items, err := s.store.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	return s.overlay(items, func(b *domainbooking.Booking) bool {
		return b.GuestID == guestID
	}), nil
}

func (s *stagedBookings) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	items, err := s.store.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.overlay(items, func(b *domainbooking.Booking) bool {
		return b.ListingID == listingID
	}), nil
}

func (s *stagedBookings) ApprovedOverlapping(ctx context.Context, listingID domainlistings.ListingID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	items, err := s.store.ApprovedOverlapping(ctx, listingID, dr)
	if err != nil {
		return nil, err
	}
	return s.overlay(items, func(b *domainbooking.Booking) bool {
		return b.ListingID == listingID && b.Status == domainbooking.StatusApproved && b.Range.Overlaps(dr)
	}), nil
}

func (s *stagedBookings) overlay(items []*domainbooking.Booking, match func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	if len(s.staged) == 0 {
		return items
	}
	out := make([]*domainbooking.Booking, 0, len(items)+len(s.staged))
	for _, b := range items {
		if staged, ok := s.staged[b.ID]; ok {
			if match(staged) {
				out = append(out, cloneBooking(staged))
			}
			continue
		}
		out = append(out, b)
	}
	for id, b := range s.staged {
		if _, replaced := findBooking(items, id); replaced {
			continue
		}
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out)
	return out
}

func findBooking(items []*domainbooking.Booking, id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	for _, b := range items {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// stagedCalendars overlays the unit's pending calendar writes on the store.
type stagedCalendars struct {
	store  *AvailabilityRepository
	staged map[domainlistings.ListingID]*domainavailability.Calendar
}

func (s *stagedCalendars) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	if cal, ok := s.staged[id]; ok {
		return cloneCalendar(cal), nil
	}
	return s.store.Calendar(ctx, id)
}

func (s *stagedCalendars) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	s.staged[calendar.ListingID] = cloneCalendar(calendar)
	return nil
}
