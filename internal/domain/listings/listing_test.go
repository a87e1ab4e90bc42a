package listings_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/listings"
)

func validParams() listings.CreateListingParams {
	return listings.CreateListingParams{
		ID:            "ls-1",
		Host:          "host-1",
		Name:          "Harbour loft",
		Description:   "Bright loft near the waterfront",
		Location:      "Lisbon, Portugal",
		PricePerNight: decimal.RequireFromString("120.50"),
		Now:           time.Now(),
	}
}

func TestNewListingRecordsCreation(t *testing.T) {
	l, err := listings.NewListing(validParams())
	require.NoError(t, err)

	assert.Equal(t, listings.HostID("host-1"), l.Host)
	events := l.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "listing.created", events[0].EventName())
}

func TestNewListingValidation(t *testing.T) {
	params := validParams()
	params.Name = "  "
	_, err := listings.NewListing(params)
	assert.ErrorIs(t, err, listings.ErrNameRequired)

	params = validParams()
	params.Host = ""
	_, err = listings.NewListing(params)
	assert.ErrorIs(t, err, listings.ErrHostRequired)

	params = validParams()
	params.PricePerNight = decimal.Zero
	_, err = listings.NewListing(params)
	assert.ErrorIs(t, err, listings.ErrInvalidPrice)

	params = validParams()
	params.PricePerNight = decimal.RequireFromString("-5")
	_, err = listings.NewListing(params)
	assert.ErrorIs(t, err, listings.ErrInvalidPrice)
}

func TestAddPhotoAppends(t *testing.T) {
	l, err := listings.NewListing(validParams())
	require.NoError(t, err)
	l.ClearEvents()

	require.NoError(t, l.AddPhoto("https://cdn.example.com/a.jpg", time.Now()))
	require.NoError(t, l.AddPhoto("https://cdn.example.com/b.jpg", time.Now()))
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, l.Photos)

	assert.ErrorIs(t, l.AddPhoto("  ", time.Now()), listings.ErrPhotoURLRequired)
	assert.Len(t, l.PendingEvents(), 2)
}

func TestSearchParamsNormalized(t *testing.T) {
	p := listings.SearchParams{Location: "  LISBON ", Limit: -1, Offset: -3}
	n := p.Normalized()
	assert.Equal(t, "lisbon", n.Location)
	assert.Equal(t, 50, n.Limit)
	assert.Equal(t, 0, n.Offset)

	p = listings.SearchParams{Limit: 10000}
	assert.Equal(t, 200, p.Normalized().Limit)
}

func TestMatchesLocationIsCaseInsensitiveSubstring(t *testing.T) {
	l, err := listings.NewListing(validParams())
	require.NoError(t, err)

	assert.True(t, l.MatchesLocation("lisbon"))
	assert.True(t, l.MatchesLocation("portugal"))
	assert.False(t, l.MatchesLocation("porto,"))
	assert.True(t, l.MatchesLocation(""))
}
