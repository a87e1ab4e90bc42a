package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

// ListingRepository is an in-memory implementation with the same versioned
// save semantics as the document store: a stale aggregate loses its write.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[listing.ID]
	if ok && current.Version != listing.Version {
		return uow.ErrConcurrentUpdate
	}
	stored := cloneListing(listing)
	stored.Version++
	r.items[listing.ID] = stored
	listing.Version = stored.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if opts.Host != "" && listing.Host != opts.Host {
			continue
		}
		if opts.Location != "" && !listing.MatchesLocation(opts.Location) {
			continue
		}
		matches = append(matches, cloneListing(listing))
	}

	sortListings(matches, opts.OldestFirst)

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return matches[start:end], nil
}

// BookingRepository stores bookings in memory with compare-and-swap saves.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(booking), nil
}

// Save applies the version check that serializes concurrent transitions: two
// hosts approving overlapping requests both load version N, and only the
// first save with version N wins.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[booking.ID]
	if ok && current.Version != booking.Version {
		return uow.ErrConcurrentUpdate
	}
	stored := cloneBooking(booking)
	stored.Version++
	r.items[booking.ID] = stored
	booking.Version = stored.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(guestID)
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.GuestID == id {
			matches = append(matches, cloneBooking(booking))
		}
	}
	sortBookings(matches)
	return matches, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID == listingID {
			matches = append(matches, cloneBooking(booking))
		}
	}
	sortBookings(matches)
	return matches, nil
}

func (r *BookingRepository) ApprovedOverlapping(ctx context.Context, listingID domainlistings.ListingID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID != listingID || booking.Status != domainbooking.StatusApproved {
			continue
		}
		if booking.Range.Overlaps(dr) {
			matches = append(matches, cloneBooking(booking))
		}
	}
	sortBookings(matches)
	return matches, nil
}

// AvailabilityRepository keeps availability calendars in memory.
type AvailabilityRepository struct {
	mu        sync.RWMutex
	calendars map[domainlistings.ListingID]*domainavailability.Calendar
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{
		calendars: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

// Calendar retrieves the calendar for a listing, lazily creating it.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cal, ok := r.calendars[id]; ok {
		return cloneCalendar(cal), nil
	}
	cal := domainavailability.NewCalendar(id)
	r.calendars[id] = cal
	return cloneCalendar(cal), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.calendars[calendar.ListingID]
	if ok && current.Version != calendar.Version {
		return uow.ErrConcurrentUpdate
	}
	stored := cloneCalendar(calendar)
	stored.Version++
	r.calendars[calendar.ListingID] = stored
	calendar.Version = stored.Version
	return nil
}

func sortListings(items []*domainlistings.Listing, oldestFirst bool) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		if oldestFirst {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func sortBookings(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	out := *l
	out.Photos = append([]string(nil), l.Photos...)
	out.ClearEvents()
	return &out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	out := *b
	out.ClearEvents()
	return &out
}

func cloneCalendar(c *domainavailability.Calendar) *domainavailability.Calendar {
	out := *c
	out.Entries = make(map[string]domainavailability.Entry, len(c.Entries))
	for k, v := range c.Entries {
		out.Entries[k] = v
	}
	out.ClearEvents()
	return &out
}
