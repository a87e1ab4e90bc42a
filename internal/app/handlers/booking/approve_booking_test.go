package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
)

type fixture struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	cals     *memory.AvailabilityRepository
}

func newFixture() fixture {
	listings := memory.NewListingRepository()
	bookings := memory.NewBookingRepository()
	cals := memory.NewAvailabilityRepository()
	return fixture{
		factory:  memory.Factory{ListingsRepo: listings, BookingRepo: bookings, AvailabilityRepo: cals},
		listings: listings,
		bookings: bookings,
		cals:     cals,
	}
}

// begin opens a unit and returns it with a context carrying it, the way the
// transaction middleware does for real dispatches.
func (f fixture) begin(t *testing.T) (uow.UnitOfWork, context.Context) {
	t.Helper()
	unit, err := f.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return unit, uow.ContextWithUnitOfWork(context.Background(), unit)
}

// approve runs the handler inside its own unit, committing on success and
// rolling back on error.
func (f fixture) approve(t *testing.T, hostID, bookingID string) (*bookingapp.BookingActionResult, error) {
	t.Helper()
	unit, ctx := f.begin(t)
	handler := &bookingapp.ApproveBookingHandler{}
	result, err := handler.Handle(ctx, bookingapp.ApproveBookingCommand{HostID: hostID, BookingID: bookingID})
	if err != nil {
		require.NoError(t, unit.Rollback(ctx))
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (f fixture) decline(t *testing.T, hostID, bookingID string) (*bookingapp.BookingActionResult, error) {
	t.Helper()
	unit, ctx := f.begin(t)
	handler := &bookingapp.DeclineBookingHandler{}
	result, err := handler.Handle(ctx, bookingapp.DeclineBookingCommand{HostID: hostID, BookingID: bookingID})
	if err != nil {
		require.NoError(t, unit.Rollback(ctx))
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (f fixture) seedListing(t *testing.T, id, host string) {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:            domainlistings.ListingID(id),
		Host:          domainlistings.HostID(host),
		Name:          "Canal house",
		Description:   "Two floors on the canal",
		Location:      "Amsterdam",
		PricePerNight: decimal.RequireFromString("180"),
		Now:           time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), listing))
}

func (f fixture) seedBooking(t *testing.T, id, listingID, guestID string, startDay, endDay int) {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2030, time.July, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2030, time.July, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(id),
		ListingID: domainlistings.ListingID(listingID),
		GuestID:   guestID,
		Range:     dr,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.Save(context.Background(), b))
}

func TestApproveBlocksCalendarAndFlipsStatus(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	result, err := f.approve(t, "host-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", result.Status)

	stored, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusApproved, stored.Status)

	cal, err := f.cals.Calendar(context.Background(), "ls-1")
	require.NoError(t, err)
	assert.False(t, cal.CanReserve(stored.Range))
}

func TestApproveByNonOwnerLooksLikeMissing(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	_, err := f.approve(t, "host-2", "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestApproveUnknownBooking(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")

	_, err := f.approve(t, "host-1", "bk-missing")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestApproveResolvedBookingConflicts(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	_, err := f.approve(t, "host-1", "bk-1")
	require.NoError(t, err)

	_, err = f.approve(t, "host-1", "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotPending)
}

func TestApproveOverlappingRequestConflicts(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)
	f.seedBooking(t, "bk-2", "ls-1", "guest-2", 4, 8)

	_, err := f.approve(t, "host-1", "bk-1")
	require.NoError(t, err)

	_, err = f.approve(t, "host-1", "bk-2")
	assert.ErrorIs(t, err, domainbooking.ErrOverlap)

	stored, err := f.bookings.ByID(context.Background(), "bk-2")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status, "losing request stays pending")
}

func TestApproveAdjacentRequestSucceeds(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)
	f.seedBooking(t, "bk-2", "ls-1", "guest-2", 5, 9)

	_, err := f.approve(t, "host-1", "bk-1")
	require.NoError(t, err)

	_, err = f.approve(t, "host-1", "bk-2")
	require.NoError(t, err, "back to back stays allowed by the half-open range")
}

func TestApproveRespectsHostBlockedDates(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	cal, err := f.cals.Calendar(context.Background(), "ls-1")
	require.NoError(t, err)
	_, err = cal.Set(time.Date(2030, time.July, 3, 0, 0, 0, 0, time.UTC), false, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.cals.Save(context.Background(), cal))

	_, err = f.approve(t, "host-1", "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrOverlap)
}

func TestDeclineDoesNotTouchCalendar(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	result, err := f.decline(t, "host-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "declined", result.Status)

	stored, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	cal, err := f.cals.Calendar(context.Background(), "ls-1")
	require.NoError(t, err)
	assert.True(t, cal.CanReserve(stored.Range), "declined dates remain free")
}

// Two hosts' units race on overlapping requests: both pass their checks
// before either commits. Exactly one commit may land, and the loser must
// leave no trace, not even its own booking's status flip.
func TestInterleavedApprovalsCommitExactlyOne(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)
	f.seedBooking(t, "bk-2", "ls-1", "guest-2", 4, 8)

	unitOne, ctxOne := f.begin(t)
	unitTwo, ctxTwo := f.begin(t)
	handler := &bookingapp.ApproveBookingHandler{}

	_, err := handler.Handle(ctxOne, bookingapp.ApproveBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	require.NoError(t, err)
	_, err = handler.Handle(ctxTwo, bookingapp.ApproveBookingCommand{HostID: "host-1", BookingID: "bk-2"})
	require.NoError(t, err, "second unit sees no committed overlap yet")

	require.NoError(t, unitOne.Commit(ctxOne))
	assert.ErrorIs(t, unitTwo.Commit(ctxTwo), uow.ErrConcurrentUpdate)

	winner, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusApproved, winner.Status)

	loser, err := f.bookings.ByID(context.Background(), "bk-2")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, loser.Status, "losing unit must not persist its status flip")

	cal, err := f.cals.Calendar(context.Background(), "ls-1")
	require.NoError(t, err)
	assert.True(t, cal.CanReserve(mustJulyRange(t, 6, 8)), "loser's nights outside the winner stay free")
}

// A rolled-back unit leaves the stores as they were.
func TestRollbackDiscardsStagedWrites(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	unit, ctx := f.begin(t)
	handler := &bookingapp.ApproveBookingHandler{}
	_, err := handler.Handle(ctx, bookingapp.ApproveBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	require.NoError(t, err)
	require.NoError(t, unit.Rollback(ctx))

	stored, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)

	cal, err := f.cals.Calendar(context.Background(), "ls-1")
	require.NoError(t, err)
	assert.True(t, cal.CanReserve(stored.Range))
}

func TestStaleSaveLosesToConcurrentApproval(t *testing.T) {
	f := newFixture()
	f.seedListing(t, "ls-1", "host-1")
	f.seedBooking(t, "bk-1", "ls-1", "guest-1", 1, 5)

	stale, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)

	_, err = f.approve(t, "host-1", "bk-1")
	require.NoError(t, err)

	require.NoError(t, stale.Decline(time.Now()))
	assert.ErrorIs(t, f.bookings.Save(context.Background(), stale), uow.ErrConcurrentUpdate)
}

func mustJulyRange(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2030, time.July, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2030, time.July, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}
