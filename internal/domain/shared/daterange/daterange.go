package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must be after start")

// DateRange represents a half-open interval [start, end) of calendar days.
// Both bounds are normalized to UTC midnight; the end day itself is not part
// of the range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts the occupied days, i.e. the size of [start, end).
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.Start) && t.Before(dr.End)
}

// Days lists every calendar day in the range, in order. The end day is excluded.
func (dr DateRange) Days() []time.Time {
	if dr.Validate() != nil {
		return nil
	}
	out := make([]time.Time, 0, dr.Nights())
	for d := dr.Start; d.Before(dr.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
