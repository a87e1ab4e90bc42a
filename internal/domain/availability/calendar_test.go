package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/shared/daterange"
)

func day(d int) time.Time {
	return time.Date(2030, time.June, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(day(start), day(end))
	require.NoError(t, err)
	return dr
}

func TestSetUpsertsSingleEntryPerDay(t *testing.T) {
	cal := availability.NewCalendar("ls-1")
	now := time.Now()

	_, err := cal.Set(day(10), false, now)
	require.NoError(t, err)
	_, err = cal.Set(day(10), false, now)
	require.NoError(t, err)
	entry, err := cal.Set(day(10), true, now)
	require.NoError(t, err)

	assert.Len(t, cal.Entries, 1)
	assert.True(t, entry.Available, "last write wins")
}

func TestSetRejectsZeroDate(t *testing.T) {
	cal := availability.NewCalendar("ls-1")
	_, err := cal.Set(time.Time{}, true, time.Now())
	assert.ErrorIs(t, err, availability.ErrInvalidDate)
}

func TestCanReserveTreatsUnknownDaysAsFree(t *testing.T) {
	cal := availability.NewCalendar("ls-1")
	assert.True(t, cal.CanReserve(mustRange(t, 1, 5)))

	_, err := cal.Set(day(3), false, time.Now())
	require.NoError(t, err)
	assert.False(t, cal.CanReserve(mustRange(t, 1, 5)))
	assert.True(t, cal.CanReserve(mustRange(t, 4, 6)), "blocked day outside the range")
}

func TestCanReserveIgnoresExplicitlyAvailableDays(t *testing.T) {
	cal := availability.NewCalendar("ls-1")
	_, err := cal.Set(day(2), true, time.Now())
	require.NoError(t, err)
	assert.True(t, cal.CanReserve(mustRange(t, 1, 5)))
}

func TestBlockRangeMarksEveryNight(t *testing.T) {
	cal := availability.NewCalendar("ls-1")
	cal.BlockRange(mustRange(t, 1, 4), time.Now())

	assert.Len(t, cal.Entries, 3)
	assert.False(t, cal.CanReserve(mustRange(t, 1, 2)))
	assert.False(t, cal.CanReserve(mustRange(t, 3, 4)))
	assert.True(t, cal.CanReserve(mustRange(t, 4, 6)), "checkout day stays reservable")

	events := cal.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "availability.range_blocked", events[0].EventName())
}

func TestSortedReturnsEntriesInDateOrder(t *testing.T) {
	cal := availability.NewCalendar("ls-1")
	now := time.Now()
	for _, d := range []int{9, 2, 17, 5} {
		_, err := cal.Set(day(d), false, now)
		require.NoError(t, err)
	}

	sorted := cal.Sorted()
	require.Len(t, sorted, 4)
	for i := 1; i < len(sorted); i++ {
		assert.True(t, sorted[i-1].Date.Before(sorted[i].Date))
	}
}
