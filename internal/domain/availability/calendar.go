package availability

import (
	"context"
	"sort"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrInvalidDate = fault.Validation("availability_invalid_date", "availability: date is required")
	ErrNotOwner    = fault.Forbidden("availability_not_owner", "availability: listing is not owned by caller")
)

const dateKeyLayout = "2006-01-02"

// Entry is a host-declared flag for a single calendar day. Entries are keyed
// uniquely per (listing, date); setting an existing day replaces the flag.
type Entry struct {
	Date      time.Time
	Available bool
	UpdatedAt time.Time
}

// Calendar holds the per-date availability of one listing.
type Calendar struct {
	ListingID listings.ListingID
	Entries   map[string]Entry
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id listings.ListingID) *Calendar {
	return &Calendar{ListingID: id, Entries: make(map[string]Entry)}
}

// Set upserts the flag for one day. Calling twice with the same arguments
// leaves a single entry with the last flag.
func (c *Calendar) Set(date time.Time, available bool, now time.Time) (Entry, error) {
	if date.IsZero() {
		return Entry{}, ErrInvalidDate
	}
	day := daterange.Day(date)
	entry := Entry{Date: day, Available: available, UpdatedAt: now.UTC()}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	c.Entries[day.Format(dateKeyLayout)] = entry
	c.Record(DateFlagged{ListingID: c.ListingID, Date: day, Available: available, At: entry.UpdatedAt})
	return entry, nil
}

// CanReserve reports whether no day in r has been marked unavailable. Days
// without an entry count as free.
func (c *Calendar) CanReserve(r daterange.DateRange) bool {
	for _, day := range r.Days() {
		if entry, ok := c.Entries[day.Format(dateKeyLayout)]; ok && !entry.Available {
			return false
		}
	}
	return true
}

// BlockRange marks every day in r unavailable. Invoked by booking approval
// inside the same unit of work as the status change.
func (c *Calendar) BlockRange(r daterange.DateRange, now time.Time) {
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	at := now.UTC()
	for _, day := range r.Days() {
		c.Entries[day.Format(dateKeyLayout)] = Entry{Date: day, Available: false, UpdatedAt: at}
	}
	c.Record(RangeBlocked{ListingID: c.ListingID, Range: r, At: at})
}

// Sorted returns the entries ordered by date.
func (c *Calendar) Sorted() []Entry {
	out := make([]Entry, 0, len(c.Entries))
	for _, entry := range c.Entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
