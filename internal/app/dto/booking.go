package dto

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
)

type BookingSummary struct {
	ID          string    `json:"id"`
	ListingID   string    `json:"listing_id"`
	ListingName string    `json:"listing_name,omitempty"`
	GuestID     string    `json:"guest_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Nights      int       `json:"nights"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

const bookingDateLayout = "2006-01-02"

func MapBookingSummary(b *booking.Booking) BookingSummary {
	return BookingSummary{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		StartDate: b.Range.Start.Format(bookingDateLayout),
		EndDate:   b.Range.End.Format(bookingDateLayout),
		Nights:    b.Range.Nights(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func MapHostBookingSummary(b *booking.Booking, l *listings.Listing) BookingSummary {
	summary := MapBookingSummary(b)
	if l != nil {
		summary.ListingName = l.Name
	}
	return summary
}
