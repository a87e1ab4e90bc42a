package booking

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrGuestRequired   = fault.Validation("booking_guest_required", "booking: guest id is required")
	ErrListingRequired = fault.Validation("booking_listing_required", "booking: listing id is required")
	ErrInvalidRange    = fault.Validation("booking_invalid_range", "booking: start date must be before end date")
	ErrNotFound        = fault.NotFound("booking_not_found", "booking: not found")
	ErrNotPending      = fault.Conflict("booking_not_pending", "booking: already resolved")
	ErrOverlap         = fault.Conflict("booking_overlap", "booking: dates overlap an approved booking")
)

type BookingID string

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Booking is a guest's request to occupy a listing over a half-open date
// range. Status leaves pending at most once; guest-authored fields are
// immutable after creation.
type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	// ApprovedOverlapping reports approved bookings on the listing whose
	// ranges intersect r. Runs inside the caller's unit of work so the
	// answer stays valid until commit.
	ApprovedOverlapping(ctx context.Context, listingID listings.ListingID, r daterange.DateRange) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, ErrGuestRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, ErrInvalidRange
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		Range:     params.Range,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, At: now})
	return b, nil
}

func (b *Booking) Approve(now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	b.Status = StatusApproved
	b.UpdatedAt = now.UTC()
	b.Record(BookingApproved{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Decline(now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	b.Status = StatusDeclined
	b.UpdatedAt = now.UTC()
	b.Record(BookingDeclined{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}
