package dto

import (
	"time"

	"staybook/internal/domain/listings"
)

type ListingSummary struct {
	ID            string    `json:"id"`
	HostID        string    `json:"host_id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	PricePerNight string    `json:"price_per_night"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListingDetails struct {
	ID            string          `json:"id"`
	HostID        string          `json:"host_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	PricePerNight string          `json:"price_per_night"`
	Photos        []string        `json:"photos"`
	Availability  []CalendarEntry `json:"availability"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ListingCollection struct {
	Items []ListingSummary `json:"items"`
}

func MapListingSummary(l *listings.Listing) ListingSummary {
	summary := ListingSummary{
		ID:            string(l.ID),
		HostID:        string(l.Host),
		Name:          l.Name,
		Location:      l.Location,
		PricePerNight: l.PricePerNight.StringFixed(2),
		CreatedAt:     l.CreatedAt,
	}
	if len(l.Photos) > 0 {
		summary.Thumbnail = l.Photos[0]
	}
	return summary
}

func MapListingDetails(l *listings.Listing) ListingDetails {
	return ListingDetails{
		ID:            string(l.ID),
		HostID:        string(l.Host),
		Name:          l.Name,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight.StringFixed(2),
		Photos:        append([]string(nil), l.Photos...),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func MapListingCollection(items []*listings.Listing) ListingCollection {
	out := ListingCollection{Items: make([]ListingSummary, 0, len(items))}
	for _, l := range items {
		out.Items = append(out.Items, MapListingSummary(l))
	}
	return out
}

// AdminListingRow is the back-office view, a listing joined with its host.
type AdminListingRow struct {
	ListingSummary
	HostName  string `json:"host_name,omitempty"`
	HostEmail string `json:"host_email,omitempty"`
}

type AdminListingCollection struct {
	Items []AdminListingRow `json:"items"`
}
