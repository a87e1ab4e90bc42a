package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/uow"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
)

func seedListing(t *testing.T, repo *memory.ListingRepository, id, host, location string, createdAt time.Time) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateListingParams{
		ID:            listings.ListingID(id),
		Host:          listings.HostID(host),
		Name:          "Listing " + id,
		Description:   "A place to stay",
		Location:      location,
		PricePerNight: decimal.RequireFromString("99.00"),
		Now:           createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), l))
	return l
}

func TestListingSearchFiltersAndPaginates(t *testing.T) {
	repo := memory.NewListingRepository()
	base := time.Date(2030, time.March, 1, 12, 0, 0, 0, time.UTC)
	seedListing(t, repo, "ls-1", "host-1", "Lisbon, Portugal", base)
	seedListing(t, repo, "ls-2", "host-1", "Porto, Portugal", base.Add(time.Hour))
	seedListing(t, repo, "ls-3", "host-2", "Lisbon, Portugal", base.Add(2*time.Hour))

	ctx := context.Background()

	results, err := repo.Search(ctx, listings.SearchParams{Location: "lisbon"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, listings.ListingID("ls-3"), results[0].ID, "newest first")

	results, err = repo.Search(ctx, listings.SearchParams{Host: "host-1"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = repo.Search(ctx, listings.SearchParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, listings.ListingID("ls-2"), results[0].ID)
}

func TestListingSearchOldestFirstKeepsCreationOrder(t *testing.T) {
	repo := memory.NewListingRepository()
	base := time.Date(2030, time.March, 1, 12, 0, 0, 0, time.UTC)
	seedListing(t, repo, "ls-1", "host-1", "Lisbon", base)
	seedListing(t, repo, "ls-2", "host-1", "Porto", base.Add(time.Hour))
	seedListing(t, repo, "ls-3", "host-1", "Faro", base.Add(2*time.Hour))

	results, err := repo.Search(context.Background(), listings.SearchParams{Host: "host-1", OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, listings.ListingID("ls-1"), results[0].ID)
	assert.Equal(t, listings.ListingID("ls-3"), results[2].ID)
}

func TestListingSaveDetectsStaleVersion(t *testing.T) {
	repo := memory.NewListingRepository()
	seedListing(t, repo, "ls-1", "host-1", "Lisbon", time.Now())
	ctx := context.Background()

	first, err := repo.ByID(ctx, "ls-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "ls-1")
	require.NoError(t, err)

	require.NoError(t, first.AddPhoto("https://cdn.example.com/a.jpg", time.Now()))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.AddPhoto("https://cdn.example.com/b.jpg", time.Now()))
	assert.ErrorIs(t, repo.Save(ctx, second), uow.ErrConcurrentUpdate)
}

func TestByIDReturnsDetachedCopy(t *testing.T) {
	repo := memory.NewListingRepository()
	seedListing(t, repo, "ls-1", "host-1", "Lisbon", time.Now())
	ctx := context.Background()

	loaded, err := repo.ByID(ctx, "ls-1")
	require.NoError(t, err)
	require.NoError(t, loaded.AddPhoto("https://cdn.example.com/a.jpg", time.Now()))

	fresh, err := repo.ByID(ctx, "ls-1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Photos, "mutation without save stays local")
	assert.Empty(t, fresh.PendingEvents())
}

func seedBookingWith(t *testing.T, repo *memory.BookingRepository, id string, status booking.Status, start, end int) {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2030, time.May, start, 0, 0, 0, 0, time.UTC),
		time.Date(2030, time.May, end, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := booking.NewBooking(booking.CreateParams{
		ID:        booking.BookingID(id),
		ListingID: "ls-1",
		GuestID:   "guest-1",
		Range:     dr,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	if status == booking.StatusApproved {
		require.NoError(t, b.Approve(time.Now()))
	}
	require.NoError(t, repo.Save(context.Background(), b))
}

func TestApprovedOverlappingIgnoresPendingAndAdjacent(t *testing.T) {
	repo := memory.NewBookingRepository()
	seedBookingWith(t, repo, "bk-approved", booking.StatusApproved, 10, 15)
	seedBookingWith(t, repo, "bk-pending", booking.StatusPending, 10, 15)
	seedBookingWith(t, repo, "bk-before", booking.StatusApproved, 5, 10)

	window, err := daterange.New(
		time.Date(2030, time.May, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2030, time.May, 14, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	matches, err := repo.ApprovedOverlapping(context.Background(), "ls-1", window)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, booking.BookingID("bk-approved"), matches[0].ID)
}

func TestCalendarIsLazilyCreatedAndVersioned(t *testing.T) {
	repo := memory.NewAvailabilityRepository()
	ctx := context.Background()

	first, err := repo.Calendar(ctx, "ls-1")
	require.NoError(t, err)
	second, err := repo.Calendar(ctx, "ls-1")
	require.NoError(t, err)

	_, err = first.Set(time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC), false, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = second.Set(time.Date(2030, time.May, 2, 0, 0, 0, 0, time.UTC), false, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), uow.ErrConcurrentUpdate)

	reloaded, err := repo.Calendar(ctx, "ls-1")
	require.NoError(t, err)
	assert.Len(t, reloaded.Entries, 1)
}
