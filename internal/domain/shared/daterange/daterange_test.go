package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	start := time.Date(2030, time.June, 1, 15, 30, 0, 0, loc)
	end := time.Date(2030, time.June, 4, 9, 0, 0, 0, loc)

	dr, err := daterange.New(start, end)
	require.NoError(t, err)
	assert.Equal(t, day(2030, time.June, 1), dr.Start)
	assert.Equal(t, day(2030, time.June, 4), dr.End)
	assert.Equal(t, 3, dr.Nights())
}

func TestNewRejectsEmptyOrInvertedRange(t *testing.T) {
	_, err := daterange.New(day(2030, time.June, 4), day(2030, time.June, 1))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(day(2030, time.June, 1), day(2030, time.June, 1))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a, err := daterange.New(day(2030, time.June, 1), day(2030, time.June, 5))
	require.NoError(t, err)

	adjacent, err := daterange.New(day(2030, time.June, 5), day(2030, time.June, 8))
	require.NoError(t, err)
	assert.False(t, a.Overlaps(adjacent), "checkout day should be free for the next checkin")
	assert.False(t, adjacent.Overlaps(a))

	overlapping, err := daterange.New(day(2030, time.June, 4), day(2030, time.June, 6))
	require.NoError(t, err)
	assert.True(t, a.Overlaps(overlapping))
	assert.True(t, overlapping.Overlaps(a))

	contained, err := daterange.New(day(2030, time.June, 2), day(2030, time.June, 3))
	require.NoError(t, err)
	assert.True(t, a.Overlaps(contained))
}

func TestDaysExcludesEnd(t *testing.T) {
	dr, err := daterange.New(day(2030, time.June, 1), day(2030, time.June, 4))
	require.NoError(t, err)

	days := dr.Days()
	require.Len(t, days, 3)
	assert.Equal(t, day(2030, time.June, 1), days[0])
	assert.Equal(t, day(2030, time.June, 3), days[2])
}

func TestContainsDate(t *testing.T) {
	dr, err := daterange.New(day(2030, time.June, 1), day(2030, time.June, 4))
	require.NoError(t, err)

	assert.True(t, dr.ContainsDate(day(2030, time.June, 1)))
	assert.True(t, dr.ContainsDate(day(2030, time.June, 3)))
	assert.False(t, dr.ContainsDate(day(2030, time.June, 4)))
	assert.False(t, dr.ContainsDate(day(2030, time.May, 31)))
}
