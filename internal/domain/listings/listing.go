package listings

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrNameRequired        = fault.Validation("listing_name_required", "listings: name is required")
	ErrDescriptionRequired = fault.Validation("listing_description_required", "listings: description is required")
	ErrLocationRequired    = fault.Validation("listing_location_required", "listings: location is required")
	ErrHostRequired        = fault.Validation("listing_host_required", "listings: host is required")
	ErrInvalidPrice        = fault.Validation("listing_invalid_price", "listings: price per night must be positive")
	ErrPhotoURLRequired    = fault.Validation("listing_photo_url_required", "listings: photo url is required")
	ErrNotFound            = fault.NotFound("listing_not_found", "listings: not found")
)

type ListingID string
type HostID string

// Listing is a rentable unit exclusively owned by one host. Guest-visible
// fields are immutable after creation; only the owning host appends photos.
type Listing struct {
	ID            ListingID
	Host          HostID
	Name          string
	Description   string
	Location      string
	PricePerNight decimal.Decimal
	Photos        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
}

type CreateListingParams struct {
	ID            ListingID
	Host          HostID
	Name          string
	Description   string
	Location      string
	PricePerNight decimal.Decimal
	Now           time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return nil, ErrLocationRequired
	}
	if !params.PricePerNight.IsPositive() {
		return nil, ErrInvalidPrice
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	listing := &Listing{
		ID:            params.ID,
		Host:          params.Host,
		Name:          strings.TrimSpace(params.Name),
		Description:   strings.TrimSpace(params.Description),
		Location:      strings.TrimSpace(params.Location),
		PricePerNight: params.PricePerNight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	listing.Record(ListingCreated{ListingID: listing.ID, HostID: listing.Host, At: now})
	return listing, nil
}

func (l *Listing) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrPhotoURLRequired
	}
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	l.Record(ListingPhotoAdded{ListingID: l.ID, URL: url, At: l.UpdatedAt})
	return nil
}
